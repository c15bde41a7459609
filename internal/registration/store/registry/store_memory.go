// Package registry persists submitted registrations.
package registry

import (
	"context"
	"sync"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	byID        map[id.RegistrationID]*models.Registration
	byTouristID map[id.TouristID]id.RegistrationID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:        make(map[id.RegistrationID]*models.Registration),
		byTouristID: make(map[id.TouristID]id.RegistrationID),
	}
}

// Save inserts a record. A duplicate ID or Tourist ID is sentinel.ErrConflict.
func (s *InMemoryStore) Save(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[reg.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byTouristID[reg.TouristID]; ok {
		return sentinel.ErrConflict
	}
	c := *reg
	c.Documents = append([]models.DocumentSlot(nil), reg.Documents...)
	s.byID[reg.ID] = &c
	s.byTouristID[reg.TouristID] = reg.ID
	return nil
}

// Delete removes a record. A missing record is sentinel.ErrNotFound.
func (s *InMemoryStore) Delete(_ context.Context, regID id.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[regID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byTouristID, reg.TouristID)
	delete(s.byID, regID)
	return nil
}

func (s *InMemoryStore) FindByTouristID(_ context.Context, touristID id.TouristID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regID, ok := s.byTouristID[touristID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *s.byID[regID]
	return &c, nil
}
