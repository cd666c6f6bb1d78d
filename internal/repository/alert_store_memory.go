package repository

import (
	"fmt"
	"sync"

	"AstroPulse/internal/domain/models"
	domrepo "AstroPulse/internal/domain/repository"
)

// MemoryAlertStore keeps the rule set and a bounded event history in process
// memory. All mutations are serialized behind one mutex: handlers and the
// evaluation path call concurrently, and trigger bookkeeping must not lose
// updates.
type MemoryAlertStore struct {
	mu           sync.RWMutex
	rules        map[string]*models.AlertRule
	events       []models.AlertEvent
	historyLimit int
}

func NewMemoryAlertStore(historyLimit int) *MemoryAlertStore {
	if historyLimit <= 0 {
		historyLimit = 500
	}
	return &MemoryAlertStore{
		rules:        make(map[string]*models.AlertRule),
		historyLimit: historyLimit,
	}
}

func (s *MemoryAlertStore) Insert(rule *models.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[rule.ID]; exists {
		return fmt.Errorf("alert %s already exists", rule.ID)
	}
	cp := *rule
	s.rules[rule.ID] = &cp
	return nil
}

func (s *MemoryAlertStore) Update(id string, apply func(*models.AlertRule) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return fmt.Errorf("alert %s not found", id)
	}
	return apply(r)
}

func (s *MemoryAlertStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return false
	}
	delete(s.rules, id)
	return true
}

func (s *MemoryAlertStore) Get(id string) (*models.AlertRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (s *MemoryAlertStore) List() []*models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		cp := *r
		out = append(out, &cp)
	}
	return out
}

func (s *MemoryAlertStore) ListActive(symbol string) []*models.AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.IsActive && r.Symbol == symbol {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func (s *MemoryAlertStore) AppendEvent(ev models.AlertEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	if len(s.events) > s.historyLimit {
		// drop the oldest; history is bounded
		s.events = s.events[len(s.events)-s.historyLimit:]
	}
}

// Events returns up to limit events, newest first.
func (s *MemoryAlertStore) Events(limit int) []models.AlertEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.events) {
		limit = len(s.events)
	}
	out := make([]models.AlertEvent, 0, limit)
	for i := len(s.events) - 1; i >= len(s.events)-limit; i-- {
		out = append(out, s.events[i])
	}
	return out
}

var _ domrepo.AlertStore = (*MemoryAlertStore)(nil)
