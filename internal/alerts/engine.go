package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
	domsvc "AstroPulse/internal/domain/service"
	applogger "AstroPulse/pkg/logger"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaultCooldown sets the cooldown applied when a rule has none.
func WithDefaultCooldown(d time.Duration) EngineOption {
	return func(e *Engine) { e.defaultCooldown = d }
}

// WithNotifyTimeout bounds each channel's delivery attempt.
func WithNotifyTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.notifyTimeout = d }
}

// WithMetrics wires the operational metrics recorder.
func WithMetrics(m domrepo.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// Engine evaluates persistent alert rules against incoming signals, manages
// trigger dedup/cooldown, and fans notifications out to its channels.
//
// Rule lifecycle: active -> triggered (cooling down) -> active again once
// the cooldown elapses. Deleting a rule removes it from future evaluation.
type Engine struct {
	store     domrepo.AlertStore
	notifiers []domsvc.Notifier
	l         *applogger.Logger
	metrics   domrepo.Metrics

	defaultCooldown time.Duration
	notifyTimeout   time.Duration

	now func() time.Time // test hook

	mu            sync.Mutex
	unknownLogged map[string]struct{}
}

func NewEngine(store domrepo.AlertStore, notifiers []domsvc.Notifier, l *applogger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:           store,
		notifiers:       notifiers,
		l:               l,
		defaultCooldown: 5 * time.Minute,
		notifyTimeout:   10 * time.Second,
		now:             time.Now,
		unknownLogged:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create validates and registers a new rule, assigning an id if absent.
// The rule starts active and untriggered.
func (e *Engine) Create(rule models.AlertRule) (string, error) {
	switch rule.Type {
	case models.AlertTypeThreshold, models.AlertTypeTrend, models.AlertTypeConfidence:
	default:
		return "", fmt.Errorf("alert type %q is not supported", rule.Type)
	}
	if rule.Symbol == "" {
		return "", fmt.Errorf("alert symbol is required")
	}
	if rule.Type == models.AlertTypeThreshold {
		if rule.Conditions.Metric == "" || normalizeOperator(rule.Conditions.Operator) == "" {
			return "", fmt.Errorf("threshold alert requires metric and operator")
		}
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.Created = e.now().UTC()
	rule.LastTriggered = nil
	rule.TriggerCount = 0
	rule.IsActive = true

	if err := e.store.Insert(&rule); err != nil {
		return "", err
	}
	return rule.ID, nil
}

// Update applies a partial patch to an existing rule.
func (e *Engine) Update(id string, patch models.AlertRulePatch) error {
	return e.store.Update(id, func(r *models.AlertRule) error {
		if patch.Conditions != nil {
			r.Conditions = *patch.Conditions
		}
		if patch.Notification != nil {
			r.Notification = *patch.Notification
		}
		if patch.IsActive != nil {
			r.IsActive = *patch.IsActive
		}
		return nil
	})
}

// Delete removes a rule from future evaluation.
func (e *Engine) Delete(id string) bool { return e.store.Delete(id) }

// Get returns one rule.
func (e *Engine) Get(id string) (*models.AlertRule, bool) { return e.store.Get(id) }

// List returns all rules.
func (e *Engine) List() []*models.AlertRule { return e.store.List() }

// History returns the latest alert events, newest first.
func (e *Engine) History(limit int) []models.AlertEvent { return e.store.Events(limit) }

// Check evaluates every active rule matching the snapshot's symbol. Rules
// whose predicate holds and that are not cooling down transition to
// triggered: bookkeeping is recorded, an event is appended, and
// notifications are dispatched with per-channel isolation.
func (e *Engine) Check(ctx context.Context, snap models.SignalSnapshot) []models.AlertEvent {
	now := e.now().UTC()
	var fired []models.AlertEvent

	for _, rule := range e.store.ListActive(snap.Symbol) {
		hit, err := evaluate(rule, snap)
		if err != nil {
			e.logUnknownOnce(rule.ID, err)
			continue
		}
		if !hit || e.coolingDown(rule, now) {
			continue
		}

		ev := models.AlertEvent{
			AlertID:   rule.ID,
			Symbol:    rule.Symbol,
			Type:      rule.Type,
			Snapshot:  snap,
			Timestamp: now,
			Message:   triggerMessage(rule, snap),
		}

		if err := e.store.Update(rule.ID, func(r *models.AlertRule) error {
			t := now
			r.LastTriggered = &t
			r.TriggerCount++
			return nil
		}); err != nil {
			e.l.Error("alert bookkeeping failed", applogger.String("alert_id", rule.ID), applogger.Error(err))
			continue
		}

		e.store.AppendEvent(ev)
		if e.metrics != nil {
			e.metrics.RecordAlertTriggered(string(rule.Type))
		}
		e.dispatch(ctx, rule, ev)
		fired = append(fired, ev)
	}
	return fired
}

// dispatch fans one event out to every channel concurrently. Each channel's
// failure is logged and isolated; a slow or failing channel never cancels
// the others.
func (e *Engine) dispatch(ctx context.Context, rule *models.AlertRule, ev models.AlertEvent) {
	targets := e.channelsFor(rule)
	if len(targets) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, n := range targets {
		wg.Add(1)
		go func(n domsvc.Notifier) {
			defer wg.Done()
			nctx, cancel := context.WithTimeout(ctx, e.notifyTimeout)
			defer cancel()
			err := n.Notify(nctx, ev, rule.Notification)
			if e.metrics != nil {
				e.metrics.RecordNotification(n.Name(), err == nil)
			}
			if err != nil {
				e.l.Warn("notification delivery failed",
					applogger.String("channel", n.Name()),
					applogger.String("alert_id", ev.AlertID),
					applogger.Error(err),
				)
			}
		}(n)
	}
	wg.Wait()
}

func (e *Engine) channelsFor(rule *models.AlertRule) []domsvc.Notifier {
	if len(rule.Notification.Channels) == 0 {
		return e.notifiers
	}
	want := make(map[string]struct{}, len(rule.Notification.Channels))
	for _, c := range rule.Notification.Channels {
		want[c] = struct{}{}
	}
	out := make([]domsvc.Notifier, 0, len(e.notifiers))
	for _, n := range e.notifiers {
		if _, ok := want[n.Name()]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (e *Engine) coolingDown(rule *models.AlertRule, now time.Time) bool {
	if rule.LastTriggered == nil {
		return false
	}
	cd := e.defaultCooldown
	if rule.Notification.CooldownMinutes > 0 {
		cd = time.Duration(rule.Notification.CooldownMinutes) * time.Minute
	}
	return now.Sub(*rule.LastTriggered) < cd
}

func (e *Engine) logUnknownOnce(ruleID string, err error) {
	e.mu.Lock()
	_, seen := e.unknownLogged[ruleID]
	if !seen {
		e.unknownLogged[ruleID] = struct{}{}
	}
	e.mu.Unlock()
	if !seen {
		e.l.Warn("alert rule skipped", applogger.String("alert_id", ruleID), applogger.Error(err))
	}
}

func triggerMessage(rule *models.AlertRule, snap models.SignalSnapshot) string {
	switch rule.Type {
	case models.AlertTypeThreshold:
		field, _ := snap.Field(rule.Conditions.Metric)
		return fmt.Sprintf("%s: %s %s %.4g (now %.4g)",
			rule.Symbol, rule.Conditions.Metric, normalizeOperator(rule.Conditions.Operator), rule.Conditions.Value, field)
	case models.AlertTypeTrend:
		return fmt.Sprintf("%s: %s trend, confidence %.2f", rule.Symbol, snap.Direction, snap.Confidence)
	default:
		return fmt.Sprintf("%s: confidence %.2f, predicted move %.2f%%", rule.Symbol, snap.Confidence, snap.PredictedChange*100)
	}
}
