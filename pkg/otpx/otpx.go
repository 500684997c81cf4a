// Package otpx produces numeric one time codes.
//
// Each code is an HOTP value (RFC 4226) computed over a fresh random secret
// and counter, so codes are uniformly distributed, never reused across
// issuances, and independent of any stored state.
package otpx

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	DefaultDigits = 6
	MinDigits     = 4
	MaxDigits     = 10
)

// Generator issues codes of a fixed number of digits.
type Generator struct {
	digits int
}

// NewGenerator clamps digits into [MinDigits, MaxDigits].
func NewGenerator(digits int) *Generator {
	if digits <= 0 {
		digits = DefaultDigits
	}
	return &Generator{digits: min(max(digits, MinDigits), MaxDigits)}
}

func (g *Generator) Digits() int { return g.digits }

// Code returns a new zero padded numeric code.
func (g *Generator) Code() (string, error) {
	var raw [28]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("otpx: read random: %w", err)
	}

	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:20])
	counter := binary.BigEndian.Uint64(raw[20:])

	code, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
		Digits:    otp.Digits(g.digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("otpx: hotp: %w", err)
	}
	return code, nil
}
