package models

import "time"

// AlertType selects the predicate family of a rule.
type AlertType string

const (
	AlertTypeThreshold  AlertType = "threshold"
	AlertTypeTrend      AlertType = "trend"
	AlertTypeConfidence AlertType = "confidence"
)

// AlertConditions carries the per-type predicate parameters. Only the fields
// relevant to the rule's type are consulted.
type AlertConditions struct {
	// threshold
	Metric   string  `json:"metric,omitempty"`
	Operator string  `json:"operator,omitempty"` // > >= < <= == != or word aliases
	Value    float64 `json:"value,omitempty"`

	// trend
	Direction     string  `json:"direction,omitempty"` // bullish | bearish | any
	MinConfidence float64 `json:"min_confidence,omitempty"`

	// confidence
	ConfidenceMin   float64 `json:"confidence_min,omitempty"`
	ConfidenceMax   float64 `json:"confidence_max,omitempty"`
	SignificantMove float64 `json:"significant_move,omitempty"` // min |predicted_change|
}

// AlertNotification configures delivery for a rule.
type AlertNotification struct {
	Channels        []string `json:"channels"` // webhook, websocket, kafka, log
	WebhookURL      string   `json:"webhook_url,omitempty"`
	CooldownMinutes int      `json:"cooldown_minutes,omitempty"` // 0 means default
}

// AlertRule is a persistent rule evaluated against every matching signal.
type AlertRule struct {
	ID            string            `json:"id"`
	Type          AlertType         `json:"type"`
	Symbol        string            `json:"symbol"`
	Conditions    AlertConditions   `json:"conditions"`
	Notification  AlertNotification `json:"notification"`
	Created       time.Time         `json:"created"`
	LastTriggered *time.Time        `json:"last_triggered,omitempty"`
	TriggerCount  int               `json:"trigger_count"`
	IsActive      bool              `json:"is_active"`
}

// AlertRulePatch is a partial update to a rule; nil fields are left untouched.
type AlertRulePatch struct {
	Conditions   *AlertConditions   `json:"conditions,omitempty"`
	Notification *AlertNotification `json:"notification,omitempty"`
	IsActive     *bool              `json:"is_active,omitempty"`
}

// AlertEvent is an append-only record of one rule trigger.
type AlertEvent struct {
	AlertID   string         `json:"alert_id"`
	Symbol    string         `json:"symbol"`
	Type      AlertType      `json:"type"`
	Snapshot  SignalSnapshot `json:"signal"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
}
