package repository

import (
	"fmt"
	"testing"
	"time"

	"AstroPulse/internal/domain/models"
)

func rule(id, symbol string, active bool) *models.AlertRule {
	return &models.AlertRule{
		ID:       id,
		Type:     models.AlertTypeTrend,
		Symbol:   symbol,
		IsActive: active,
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	s := NewMemoryAlertStore(10)
	if err := s.Insert(rule("a", "BTC", true)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(rule("a", "ETH", true)); err == nil {
		t.Fatalf("duplicate id must be rejected")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewMemoryAlertStore(10)
	if err := s.Insert(rule("a", "BTC", true)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, ok := s.Get("a")
	if !ok {
		t.Fatalf("rule not found")
	}
	got.Symbol = "DOGE"

	again, _ := s.Get("a")
	if again.Symbol != "BTC" {
		t.Fatalf("mutating a returned rule leaked into the store")
	}
}

func TestUpdateMutatesStoredRule(t *testing.T) {
	s := NewMemoryAlertStore(10)
	if err := s.Insert(rule("a", "BTC", true)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.Update("a", func(r *models.AlertRule) error {
		r.TriggerCount++
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.Get("a")
	if got.TriggerCount != 1 {
		t.Fatalf("expected trigger count 1, got %d", got.TriggerCount)
	}

	if err := s.Update("missing", func(*models.AlertRule) error { return nil }); err == nil {
		t.Fatalf("updating a missing rule must error")
	}
}

func TestListActiveFiltersSymbolAndState(t *testing.T) {
	s := NewMemoryAlertStore(10)
	for _, r := range []*models.AlertRule{
		rule("a", "BTC", true),
		rule("b", "BTC", false),
		rule("c", "ETH", true),
	} {
		if err := s.Insert(r); err != nil {
			t.Fatalf("insert %s: %v", r.ID, err)
		}
	}

	active := s.ListActive("BTC")
	if len(active) != 1 || active[0].ID != "a" {
		t.Fatalf("expected only the active BTC rule, got %+v", active)
	}
	if len(s.List()) != 3 {
		t.Fatalf("List must return everything")
	}
}

func TestDelete(t *testing.T) {
	s := NewMemoryAlertStore(10)
	if err := s.Insert(rule("a", "BTC", true)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !s.Delete("a") {
		t.Fatalf("delete should report success")
	}
	if s.Delete("a") {
		t.Fatalf("second delete should report absence")
	}
}

func TestEventsBoundedNewestFirst(t *testing.T) {
	s := NewMemoryAlertStore(3)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.AppendEvent(models.AlertEvent{
			AlertID:   fmt.Sprintf("ev-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		})
	}

	events := s.Events(0)
	if len(events) != 3 {
		t.Fatalf("history must be bounded at 3, got %d", len(events))
	}
	if events[0].AlertID != "ev-4" || events[2].AlertID != "ev-2" {
		t.Fatalf("expected newest first with oldest dropped, got %+v", events)
	}

	if got := s.Events(2); len(got) != 2 || got[0].AlertID != "ev-4" {
		t.Fatalf("limit must cap from the newest end, got %+v", got)
	}
}
