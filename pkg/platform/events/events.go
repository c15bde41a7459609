// Package events carries domain events from services to sinks (in-memory
// store, Kafka). Events are transport-agnostic and never hold raw PII: ID
// numbers appear only as keyed hashes.
package events

import (
	"context"
	"time"
)

// Type names an event. Values are stable on the wire.
type Type string

const (
	TypeSessionStarted        Type = "registration.started"
	TypeOTPRequested          Type = "otp.requested"
	TypeOTPVerified           Type = "otp.verified"
	TypeDocumentRejected      Type = "document.rejected"
	TypeRegistrationSubmitted Type = "registration.submitted"
	TypeSafetyAlert           Type = "safety.alert"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	ID        string            `json:"id"`
	Type      Type              `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	SessionID string            `json:"session_id,omitempty"`
	TouristID string            `json:"tourist_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// Key is the partitioning key: the tourist once known, else the session.
func (e Event) Key() string {
	if e.TouristID != "" {
		return e.TouristID
	}
	return e.SessionID
}

// Sink persists or forwards events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
