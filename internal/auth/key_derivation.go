package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeyLength is the size of every derived key.
const DerivedKeyLength = 32

const purposeCSRF = "gala-csrf-v1"

var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// DeriveKey expands masterSecret into a 32-byte key with HKDF-SHA256.
// Different purposes yield independent keys.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))
	key := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// CSRFKey returns the gorilla/csrf authentication key. A configured key of
// the right length is used as is; anything else is stretched from the JWT
// secret so one secret is enough to run the server.
func CSRFKey(configured, jwtSecret string) ([]byte, error) {
	if len(configured) == DerivedKeyLength {
		return []byte(configured), nil
	}
	if configured != "" {
		return DeriveKey([]byte(configured), purposeCSRF)
	}
	return DeriveKey([]byte(jwtSecret), purposeCSRF)
}
