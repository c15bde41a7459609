// Package alert records SOS and emergency alerts.
package alert

import (
	"context"
	"slices"
	"sync"

	"touristid/internal/safety/models"
	id "touristid/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	alerts map[id.TouristID][]models.Alert
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{alerts: make(map[id.TouristID][]models.Alert)}
}

func (s *InMemoryStore) Append(_ context.Context, a *models.Alert) error {
	c := *a
	c.Notified = slices.Clone(a.Notified)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.TouristID] = append(s.alerts[a.TouristID], c)
	return nil
}

// ListByTourist returns the tourist's alerts, newest first.
func (s *InMemoryStore) ListByTourist(_ context.Context, touristID id.TouristID) ([]*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.alerts[touristID]
	out := make([]*models.Alert, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		a := stored[i]
		a.Notified = slices.Clone(a.Notified)
		out = append(out, &a)
	}
	return out, nil
}
