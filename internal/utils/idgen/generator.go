// Package idgen produces prefixed, collision-resistant public identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateSecureID returns "<prefix>_<length random chars>" using a
// cryptographically secure source, e.g. "conv_8fj2k9x0a1b2c3d4".
func GenerateSecureID(prefix string, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("id length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return prefix + "_" + string(buf), nil
}

// MustGenerateSecureID panics on entropy failure. Entropy exhaustion is not a
// recoverable condition for request handling.
func MustGenerateSecureID(prefix string, length int) string {
	id, err := GenerateSecureID(prefix, length)
	if err != nil {
		panic(err)
	}
	return id
}
