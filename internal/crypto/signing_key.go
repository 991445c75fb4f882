package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"
)

const signingKeyLength = 32

var ErrEmptyBaseSecret = errors.New("base secret must not be empty")

// DeriveSigningKey derives a session signing key from the configured base
// secret, salted with the start time and fresh random bytes. Two calls never
// return the same key, so tokens signed by one process are rejected by any
// other process or after a restart.
func DeriveSigningKey(baseSecret string, startedAt time.Time) ([]byte, error) {
	if baseSecret == "" {
		return nil, ErrEmptyBaseSecret
	}

	salt := make([]byte, 8+32)
	binary.BigEndian.PutUint64(salt[:8], uint64(startedAt.UnixNano()))
	if _, err := rand.Read(salt[8:]); err != nil {
		return nil, fmt.Errorf("generating key salt: %w", err)
	}

	reader := hkdf.New(sha256.New, []byte(baseSecret), salt, []byte("ecoleta session signing key"))
	key := make([]byte, signingKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("deriving signing key: %w", err)
	}
	return key, nil
}
