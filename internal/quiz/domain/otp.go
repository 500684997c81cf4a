package domain

import "time"

// OTPRecord is the single live one time code of an email address.
type OTPRecord struct {
	Email      string // normalised, natural key
	CodeHash   string // bcrypt; the plaintext code is never stored
	ExpiresAt  time.Time
	LastSentAt time.Time
	Attempts   int
	VerifiedAt *time.Time
	CreatedAt  time.Time
}

// Expired reports whether now is strictly after the expiry.
func (r OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Verified reports whether a correct code has been presented for this issuance.
func (r OTPRecord) Verified() bool {
	return r.VerifiedAt != nil
}
