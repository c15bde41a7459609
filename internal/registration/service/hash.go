package service

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// idNumberHasher derives the stored fingerprint of an ID number: blake2b-256,
// keyed when a key is configured.
type idNumberHasher struct {
	key []byte
}

func newIDNumberHasher(key string) (*idNumberHasher, error) {
	if _, err := blake2b.New256([]byte(key)); err != nil {
		return nil, err
	}
	return &idNumberHasher{key: []byte(key)}, nil
}

func (h *idNumberHasher) Sum(idNumber string) string {
	mac, _ := blake2b.New256(h.key)
	mac.Write([]byte(idNumber))
	return hex.EncodeToString(mac.Sum(nil))
}
