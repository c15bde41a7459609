// Package domain holds typed identifiers shared across modules.
//
// Construct IDs from external input only through the Parse* functions; a
// direct conversion skips validation.
package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	dErrors "touristid/pkg/domain-errors"
)

// SessionID identifies an open registration wizard session.
type SessionID uuid.UUID

// AlertID identifies a safety alert raised from a tourist dashboard.
type AlertID uuid.UUID

// RegistrationID identifies a submitted registration record. ULIDs keep
// records sortable by submission time.
type RegistrationID ulid.ULID

// TouristID is the display identifier handed to a tourist on submission.
// Format: TouristIDPrefix followed by TouristIDSuffixLen uppercase base36 characters.
type TouristID string

const (
	TouristIDPrefix    = "TST-2024-"
	TouristIDSuffixLen = 9
)

func NewSessionID() SessionID { return SessionID(uuid.New()) }
func NewAlertID() AlertID     { return AlertID(uuid.New()) }

// NewRegistrationID returns a monotonic ULID using the process-wide entropy source.
func NewRegistrationID() RegistrationID { return RegistrationID(ulid.Make()) }

func (id SessionID) String() string      { return uuid.UUID(id).String() }
func (id SessionID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) String() string        { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return ulid.ULID(id).String() }
func (id TouristID) String() string      { return string(id) }

// ParseSessionID parses a session ID from external input.
//
// Errors: CodeInvalidInput when the value is empty, malformed or the nil UUID.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session ID")
	if err != nil {
		return SessionID{}, err
	}
	return SessionID(u), nil
}

// ParseAlertID parses an alert ID from external input.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parseUUID(s, "alert ID")
	if err != nil {
		return AlertID{}, err
	}
	return AlertID(u), nil
}

// ParseRegistrationID parses a ULID registration ID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	if s == "" {
		return RegistrationID{}, dErrors.New(dErrors.CodeInvalidInput, "registration ID is required")
	}
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return RegistrationID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid registration ID")
	}
	return RegistrationID(u), nil
}

// ParseTouristID validates the display identifier format.
func ParseTouristID(s string) (TouristID, error) {
	suffix, ok := strings.CutPrefix(s, TouristIDPrefix)
	if !ok || len(suffix) != TouristIDSuffixLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid tourist ID")
	}
	for _, r := range suffix {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "invalid tourist ID")
		}
	}
	return TouristID(s), nil
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}
