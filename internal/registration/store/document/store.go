// Package document keeps uploaded file contents for open registration
// sessions. The wizard only ever sees descriptors; bytes live here under the
// same TTL as the session.
package document

// Blob is the stored content of one slot.
type Blob struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
