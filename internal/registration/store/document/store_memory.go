package document

import (
	"context"
	"sync"
	"time"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/sentinel"
)

type stored struct {
	blob      Blob
	expiresAt time.Time
}

type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[id.SessionID]map[models.DocumentSlot]stored
	ttl  time.Duration
	now  func() time.Time
}

func NewInMemory(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		docs: make(map[id.SessionID]map[models.DocumentSlot]stored),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Put replaces the content of slot. The slice is copied.
func (s *InMemoryStore) Put(_ context.Context, sessionID id.SessionID, slot models.DocumentSlot, blob Blob) error {
	blob.Data = append([]byte(nil), blob.Data...)
	s.mu.Lock()
	defer s.mu.Unlock()
	slots, ok := s.docs[sessionID]
	if !ok {
		slots = make(map[models.DocumentSlot]stored)
		s.docs[sessionID] = slots
	}
	slots[slot] = stored{blob: blob, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, sessionID id.SessionID, slot models.DocumentSlot) (Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[sessionID][slot]
	if !ok || !s.now().Before(d.expiresAt) {
		return Blob{}, sentinel.ErrNotFound
	}
	return Blob{ContentType: d.blob.ContentType, Data: append([]byte(nil), d.blob.Data...)}, nil
}

// Touch pushes the expiry of every live slot of the session out by the TTL.
// Slots that have already expired stay expired.
func (s *InMemoryStore) Touch(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for slot, d := range s.docs[sessionID] {
		if now.Before(d.expiresAt) {
			d.expiresAt = now.Add(s.ttl)
			s.docs[sessionID][slot] = d
		}
	}
	return nil
}

// DeleteAll drops every slot of the session.
func (s *InMemoryStore) DeleteAll(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, sessionID)
	return nil
}
