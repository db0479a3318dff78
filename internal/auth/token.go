package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const DefaultTokenBytes = 32

var ErrTokenSize = errors.New("token must carry at least 16 random bytes")

// GenerateRawToken returns nBytes of crypto/rand output, base64url encoded.
// Opaque renewal and reset credentials are built from it.
func GenerateRawToken(nBytes int) (string, error) {
	if nBytes < 16 {
		return "", ErrTokenSize
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken is the form opaque tokens are stored and looked up in.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
