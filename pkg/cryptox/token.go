package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// extraEntropyBytes is appended (hex-encoded) after the UUID in opaque tokens.
const extraEntropyBytes = 16

// NewOpaqueToken creates a single-use token for email verification and
// password reset links: a random UUID concatenated with 16 extra random
// bytes in hex. The token carries no embedded data; uniqueness is enforced
// by the storage layer's unique constraint.
func NewOpaqueToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to generate token uuid: %w", err)
	}

	buf := make([]byte, extraEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: failed to generate token entropy: %w", err)
	}

	return id.String() + hex.EncodeToString(buf), nil
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// base64url encoded. Refresh tokens are stored by fingerprint so a database
// leak does not expose usable session credentials.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
