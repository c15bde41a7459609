package sentinel

import "errors"

// Store-level facts. Stores return these (optionally wrapped) and services
// translate them into coded domain errors:
//   - ErrNotFound: no session, document or record under the key
//   - ErrConflict: a record with the same identity already exists
//   - ErrExpired: the session outlived its TTL
//
// Validation failures never use these; see pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
