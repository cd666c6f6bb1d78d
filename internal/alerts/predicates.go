package alerts

import (
	"fmt"
	"strings"

	"AstroPulse/internal/domain/models"
)

// evaluate runs the rule's predicate against a signal snapshot. An unknown
// rule type evaluates to "never triggers" with an error for logging.
func evaluate(rule *models.AlertRule, snap models.SignalSnapshot) (bool, error) {
	switch rule.Type {
	case models.AlertTypeThreshold:
		return evalThreshold(rule.Conditions, snap)
	case models.AlertTypeTrend:
		return evalTrend(rule.Conditions, snap), nil
	case models.AlertTypeConfidence:
		return evalConfidence(rule.Conditions, snap), nil
	default:
		return false, fmt.Errorf("unknown alert type %q", rule.Type)
	}
}

func evalThreshold(c models.AlertConditions, snap models.SignalSnapshot) (bool, error) {
	field, ok := snap.Field(c.Metric)
	if !ok {
		return false, fmt.Errorf("unknown threshold metric %q", c.Metric)
	}
	switch normalizeOperator(c.Operator) {
	case ">":
		return field > c.Value, nil
	case ">=":
		return field >= c.Value, nil
	case "<":
		return field < c.Value, nil
	case "<=":
		return field <= c.Value, nil
	case "==":
		return field == c.Value, nil
	case "!=":
		return field != c.Value, nil
	default:
		return false, fmt.Errorf("unknown operator %q", c.Operator)
	}
}

func evalTrend(c models.AlertConditions, snap models.SignalSnapshot) bool {
	switch strings.ToLower(c.Direction) {
	case "bullish":
		if snap.Direction != models.DirectionBullish {
			return false
		}
	case "bearish":
		if snap.Direction != models.DirectionBearish {
			return false
		}
	case "", "any":
		if snap.Direction == models.DirectionNeutral {
			return false
		}
	default:
		return false
	}
	return snap.Confidence >= c.MinConfidence
}

func evalConfidence(c models.AlertConditions, snap models.SignalSnapshot) bool {
	max := c.ConfidenceMax
	if max == 0 {
		max = 1
	}
	if snap.Confidence < c.ConfidenceMin || snap.Confidence > max {
		return false
	}
	if c.SignificantMove > 0 && abs(snap.PredictedChange) < c.SignificantMove {
		return false
	}
	return true
}

// normalizeOperator accepts both symbolic and word-form operators.
func normalizeOperator(op string) string {
	switch strings.ToLower(strings.TrimSpace(op)) {
	case ">", "gt", "greater_than", "above":
		return ">"
	case ">=", "gte", "greater_than_or_equal":
		return ">="
	case "<", "lt", "less_than", "below":
		return "<"
	case "<=", "lte", "less_than_or_equal":
		return "<="
	case "==", "=", "eq", "equals":
		return "=="
	case "!=", "ne", "not_equals":
		return "!="
	default:
		return ""
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
