// Package dashboard keeps the live safety dashboards of enrolled tourists.
package dashboard

import (
	"context"
	"sort"
	"sync"

	"touristid/internal/safety/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

// InMemoryStore holds dashboards by tourist. Values are copied in and out.
type InMemoryStore struct {
	mu         sync.RWMutex
	dashboards map[id.TouristID]models.Dashboard
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{dashboards: make(map[id.TouristID]models.Dashboard)}
}

// Create stores a new dashboard. ErrConflict when the tourist is enrolled.
func (s *InMemoryStore) Create(_ context.Context, d *models.Dashboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.dashboards[d.TouristID]; ok {
		return sentinel.ErrConflict
	}
	s.dashboards[d.TouristID] = *d
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, touristID id.TouristID) (*models.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dashboards[touristID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &d, nil
}

// UpdateAll applies fn to every dashboard under one write lock and returns
// how many were visited.
func (s *InMemoryStore) UpdateAll(_ context.Context, fn func(d *models.Dashboard)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]id.TouristID, 0, len(s.dashboards))
	for tid := range s.dashboards {
		ids = append(ids, tid)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, tid := range ids {
		d := s.dashboards[tid]
		fn(&d)
		s.dashboards[tid] = d
	}
	return len(ids), nil
}
