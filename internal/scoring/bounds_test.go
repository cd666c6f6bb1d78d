package scoring

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
)

type fakeHistoryStore struct {
	samples     map[string]models.MetricSample
	sampleErr   error
	sampleCalls int64

	candles []models.Candle
	signals []models.SignalRecord
}

func (f *fakeHistoryStore) GetCandles(_ context.Context, _ string, _, _ time.Time, _ domrepo.Timeframe) ([]models.Candle, error) {
	return f.candles, nil
}

func (f *fakeHistoryStore) GetLatestNCandles(_ context.Context, _ string, n int, _ domrepo.Timeframe) ([]models.Candle, error) {
	if n > len(f.candles) {
		n = len(f.candles)
	}
	return f.candles[len(f.candles)-n:], nil
}

func (f *fakeHistoryStore) GetMetricSample(_ context.Context, key string, _ time.Duration) (models.MetricSample, error) {
	atomic.AddInt64(&f.sampleCalls, 1)
	if f.sampleErr != nil {
		return models.MetricSample{}, f.sampleErr
	}
	return f.samples[key], nil
}

func (f *fakeHistoryStore) GetSignals(_ context.Context, _ string, _, _ time.Time) ([]models.SignalRecord, error) {
	return f.signals, nil
}

func (f *fakeHistoryStore) StoreSignal(_ context.Context, rec models.SignalRecord) error {
	f.signals = append(f.signals, rec)
	return nil
}

func (f *fakeHistoryStore) Health(_ context.Context) error { return nil }
func (f *fakeHistoryStore) Close() error                   { return nil }

func TestBoundsFromSample(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"galaxyScore": {MetricKey: "galaxyScore", Count: 100, Min: 10, Max: 90, Mean: 55, StdDev: 12},
	}}
	p := NewBoundsProvider(store, 30*24*time.Hour)

	b := p.Get(context.Background(), "galaxyScore")
	if b.Fallback {
		t.Fatalf("expected sampled bounds, got fallback")
	}
	if b.Min != 10 || b.Max != 90 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	if b.LogScale {
		t.Fatalf("max 90 should not trigger log scale")
	}
}

func TestBoundsDefaultWhenSampleUnusable(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"rsi_1h":         {MetricKey: "rsi_1h", Count: 1, Min: 40, Max: 60},
		"tweetSentiment": {MetricKey: "tweetSentiment", Count: 50, Min: 0.3, Max: 0.3},
	}}
	p := NewBoundsProvider(store, time.Hour)

	b := p.Get(context.Background(), "rsi_1h")
	if !b.Fallback {
		t.Fatalf("single-point sample must fall back to defaults")
	}
	if b.Min != 0 || b.Max != 100 {
		t.Fatalf("unexpected default rsi bounds %+v", b)
	}

	b = p.Get(context.Background(), "tweetSentiment")
	if !b.Fallback {
		t.Fatalf("degenerate sample (max==min) must fall back to defaults")
	}
	if b.Min != -1 || b.Max != 1 {
		t.Fatalf("unexpected default sentiment bounds %+v", b)
	}
}

func TestBoundsUnknownKeyDefault(t *testing.T) {
	p := NewBoundsProvider(nil, time.Hour)
	b := p.Get(context.Background(), "someNewMetric")
	if !b.Fallback {
		t.Fatalf("unknown key must be a fallback")
	}
	if b.Min != 0 || b.Max != 100 {
		t.Fatalf("unexpected unknown-key bounds %+v", b)
	}
}

func TestBoundsStoreErrorFallsBack(t *testing.T) {
	store := &fakeHistoryStore{sampleErr: errors.New("connection refused")}
	p := NewBoundsProvider(store, time.Hour)
	b := p.Get(context.Background(), "macd_histogram")
	if !b.Fallback {
		t.Fatalf("store error must yield fallback bounds")
	}
	if b.Min != -5 || b.Max != 5 {
		t.Fatalf("unexpected bounds %+v", b)
	}
}

func TestBoundsLogScaleSelection(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"socialVolume": {MetricKey: "socialVolume", Count: 10, Min: 5, Max: 200},
		"txVolumeUsd":  {MetricKey: "txVolumeUsd", Count: 10, Min: 1e5, Max: 1e9},
	}}
	p := NewBoundsProvider(store, time.Hour, WithLogScale([]string{"socialVolume"}, 1000))

	if b := p.Get(context.Background(), "socialVolume"); !b.LogScale {
		t.Fatalf("listed key must be log-scaled regardless of magnitude")
	}
	if b := p.Get(context.Background(), "txVolumeUsd"); !b.LogScale {
		t.Fatalf("max >= threshold must trigger log scale")
	}
}

func TestBoundsGetLoadsOnce(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"galaxyScore": {MetricKey: "galaxyScore", Count: 100, Min: 10, Max: 90},
	}}
	p := NewBoundsProvider(store, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Get(context.Background(), "galaxyScore")
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt64(&store.sampleCalls); n != 1 {
		t.Fatalf("expected a single sample load, got %d", n)
	}
	if p.Known() != 1 {
		t.Fatalf("expected 1 known key, got %d", p.Known())
	}
}

func TestBoundsRefreshKeepsPreviousOnFallback(t *testing.T) {
	store := &fakeHistoryStore{samples: map[string]models.MetricSample{
		"galaxyScore": {MetricKey: "galaxyScore", Count: 100, Min: 10, Max: 90},
	}}
	p := NewBoundsProvider(store, time.Hour)
	p.Get(context.Background(), "galaxyScore")

	// History disappears: refresh would only find a fallback, so the
	// previously sampled bounds must survive.
	store.samples = map[string]models.MetricSample{}
	p.Refresh(context.Background())

	b := p.Get(context.Background(), "galaxyScore")
	if b.Fallback || b.Min != 10 || b.Max != 90 {
		t.Fatalf("refresh replaced sampled bounds with fallback: %+v", b)
	}

	// History returns with new values: refresh must pick them up.
	store.samples = map[string]models.MetricSample{
		"galaxyScore": {MetricKey: "galaxyScore", Count: 200, Min: 20, Max: 80},
	}
	p.Refresh(context.Background())
	b = p.Get(context.Background(), "galaxyScore")
	if b.Min != 20 || b.Max != 80 {
		t.Fatalf("refresh did not update bounds: %+v", b)
	}
}
