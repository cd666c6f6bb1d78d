package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	pkgcache "AstroPulse/pkg/cache"
	applogger "AstroPulse/pkg/logger"
)

// BoundsOption configures a BoundsProvider.
type BoundsOption func(*BoundsProvider)

// WithBoundsCache wires a cache layer (memory/redis) for bounds persistence
// across restarts.
func WithBoundsCache(c pkgcache.Service, ttl time.Duration) BoundsOption {
	return func(p *BoundsProvider) {
		p.cache = c
		p.cacheTTL = ttl
	}
}

// WithBoundsLogger injects a structured logger.
func WithBoundsLogger(l *applogger.Logger) BoundsOption {
	return func(p *BoundsProvider) { p.l = l }
}

// WithLogScale marks metric keys that use log-scale min-max scaling, plus the
// magnitude threshold above which unknown metrics are log-scaled too.
func WithLogScale(keys []string, threshold float64) BoundsOption {
	return func(p *BoundsProvider) {
		for _, k := range keys {
			p.logKeys[k] = struct{}{}
		}
		if threshold > 0 {
			p.logThreshold = threshold
		}
	}
}

// BoundsProvider owns the per-metric normalization bounds cache. Bounds are
// lazily initialized exactly once per key: concurrent callers during
// initialization await the same in-flight load instead of racing it.
type BoundsProvider struct {
	store  domrepo.HistoryStore
	window time.Duration

	cache    pkgcache.Service
	cacheTTL time.Duration
	l        *applogger.Logger

	logKeys      map[string]struct{}
	logThreshold float64

	mu     sync.RWMutex
	bounds map[string]models.NormalizationBounds
	sf     singleflight.Group
}

// NewBoundsProvider creates a bounds provider reading samples from store.
// store may be nil; every key then falls back to its default range.
func NewBoundsProvider(store domrepo.HistoryStore, window time.Duration, opts ...BoundsOption) *BoundsProvider {
	p := &BoundsProvider{
		store:        store,
		window:       window,
		logKeys:      make(map[string]struct{}),
		logThreshold: 1000,
		bounds:       make(map[string]models.NormalizationBounds),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns the bounds for a metric key, initializing them on first use.
// It never returns partially initialized bounds.
func (p *BoundsProvider) Get(ctx context.Context, key string) models.NormalizationBounds {
	p.mu.RLock()
	b, ok := p.bounds[key]
	p.mu.RUnlock()
	if ok {
		return b
	}

	v, _, _ := p.sf.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a prior caller may have stored already.
		p.mu.RLock()
		b, ok := p.bounds[key]
		p.mu.RUnlock()
		if ok {
			return b, nil
		}
		b = p.load(ctx, key)
		p.mu.Lock()
		p.bounds[key] = b
		p.mu.Unlock()
		return b, nil
	})
	return v.(models.NormalizationBounds)
}

// Refresh recomputes bounds for every known key from the history store.
// Keys whose sample query fails keep their previous bounds.
func (p *BoundsProvider) Refresh(ctx context.Context) {
	p.mu.RLock()
	keys := make([]string, 0, len(p.bounds))
	for k := range p.bounds {
		keys = append(keys, k)
	}
	p.mu.RUnlock()

	for _, key := range keys {
		b := p.load(ctx, key)
		if b.Fallback {
			continue // no fresh sample, keep what we have
		}
		p.mu.Lock()
		p.bounds[key] = b
		p.mu.Unlock()
	}
}

// Known returns the number of initialized keys.
func (p *BoundsProvider) Known() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.bounds)
}

func (p *BoundsProvider) load(ctx context.Context, key string) models.NormalizationBounds {
	if p.cache != nil {
		var cached models.NormalizationBounds
		if err := p.cache.Get(ctx, boundsCacheKey(key), &cached); err == nil && cached.MetricKey == key {
			return cached
		}
	}

	b := p.sampleBounds(ctx, key)
	if p.cache != nil && !b.Fallback {
		if err := p.cache.Set(ctx, boundsCacheKey(key), b, p.cacheTTL); err != nil && p.l != nil {
			p.l.Warn("bounds cache write failed", applogger.String("metric", key), applogger.Error(err))
		}
	}
	return b
}

func (p *BoundsProvider) sampleBounds(ctx context.Context, key string) models.NormalizationBounds {
	if p.store != nil {
		sample, err := p.store.GetMetricSample(ctx, key, p.window)
		if err == nil && sample.Count > 1 && sample.Max > sample.Min {
			return models.NormalizationBounds{
				MetricKey:     key,
				Min:           sample.Min,
				Max:           sample.Max,
				Mean:          sample.Mean,
				StdDev:        sample.StdDev,
				LogScale:      p.useLogScale(key, sample.Max),
				LastRefreshed: time.Now(),
			}
		}
		if err != nil && p.l != nil {
			p.l.Warn("metric sample query failed, using default bounds",
				applogger.String("metric", key), applogger.Error(err))
		}
	}
	return p.defaultBounds(key)
}

func (p *BoundsProvider) defaultBounds(key string) models.NormalizationBounds {
	min, max, ok := defaultRange(key)
	if !ok {
		min, max = 0, 100
	}
	return models.NormalizationBounds{
		MetricKey:     key,
		Min:           min,
		Max:           max,
		LogScale:      p.useLogScale(key, max),
		Fallback:      true,
		LastRefreshed: time.Now(),
	}
}

func (p *BoundsProvider) useLogScale(key string, max float64) bool {
	if _, ok := p.logKeys[key]; ok {
		return true
	}
	return max >= p.logThreshold
}

func boundsCacheKey(metric string) string {
	return fmt.Sprintf("bounds:%s", metric)
}
