// Package session stores wizard snapshots between requests. Every save
// refreshes the session TTL.
package session

import (
	"context"
	"sync"
	"time"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

type entry struct {
	snapshot  models.Snapshot
	expiresAt time.Time
}

// InMemoryStore keeps snapshots in a map. Expired entries are dropped lazily
// on read.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]entry
	ttl      time.Duration
	now      func() time.Time
}

func NewInMemory(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[id.SessionID]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, sessionID id.SessionID, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = entry{snapshot: snap, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Find returns sentinel.ErrNotFound for unknown sessions and
// sentinel.ErrExpired for sessions past their TTL.
func (s *InMemoryStore) Find(_ context.Context, sessionID id.SessionID) (models.Snapshot, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return models.Snapshot{}, sentinel.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.sessions[sessionID]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
		return models.Snapshot{}, sentinel.ErrExpired
	}
	return e.snapshot, nil
}

func (s *InMemoryStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
