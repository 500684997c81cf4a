package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	// TokenSize128 is 16 bytes, 22 base64url characters.
	TokenSize128 = 16
	// TokenSize256 is 32 bytes, 43 base64url characters.
	TokenSize256 = 32
)

// Crockford base32 without I, L, O and U, so references survive being read
// out over the phone or typed into a UPI note.
const referenceAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateReference returns prefix followed by n random characters from an
// unambiguous upper case alphabet, e.g. "ORD-7Q2M9XKD".
func GenerateReference(prefix string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("cryptox: reference length must be positive, got %d", n)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return prefix + string(buf), nil
}
