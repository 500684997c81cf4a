package service

import (
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/otpx"
)

// OTPPolicy tunes the one time code lifecycle.
type OTPPolicy struct {
	Length      int
	Expiry      time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	HashCost    int
}

func DefaultOTPPolicy() OTPPolicy {
	return OTPPolicy{
		Length:      otpx.DefaultDigits,
		Expiry:      10 * time.Minute,
		Cooldown:    30 * time.Second,
		MaxAttempts: 5,
		HashCost:    cryptox.OTPCost,
	}
}

// withDefaults fills zero values from DefaultOTPPolicy.
func (p OTPPolicy) withDefaults() OTPPolicy {
	d := DefaultOTPPolicy()
	if p.Length <= 0 {
		p.Length = d.Length
	}
	if p.Expiry <= 0 {
		p.Expiry = d.Expiry
	}
	if p.Cooldown <= 0 {
		p.Cooldown = d.Cooldown
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.HashCost <= 0 {
		p.HashCost = d.HashCost
	}
	return p
}

// AuthPolicy tunes account passwords and issued tokens.
type AuthPolicy struct {
	PasswordCost      int
	MinPasswordLength int
	TokenTTL          time.Duration
}

func DefaultAuthPolicy() AuthPolicy {
	return AuthPolicy{
		PasswordCost:      cryptox.PasswordCost,
		MinPasswordLength: 6,
		TokenTTL:          jwtx.DefaultTokenTTL,
	}
}

func (p AuthPolicy) withDefaults() AuthPolicy {
	d := DefaultAuthPolicy()
	if p.PasswordCost <= 0 {
		p.PasswordCost = d.PasswordCost
	}
	if p.MinPasswordLength <= 0 {
		p.MinPasswordLength = d.MinPasswordLength
	}
	if p.TokenTTL <= 0 {
		p.TokenTTL = d.TokenTTL
	}
	return p
}
