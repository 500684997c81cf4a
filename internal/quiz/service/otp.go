package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/mailx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/otpx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

// OTPService issues and verifies email one time codes.
type OTPService struct {
	Store  store.Store
	Mailer mailx.Sender
	Brand  mailx.Brand
	Policy OTPPolicy

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Request issues a fresh code for email and mails it. A resend inside the
// cooldown fails with *CooldownError. When delivery fails the record is kept,
// so an immediate retry hits the cooldown.
func (s *OTPService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	policy := s.Policy.withDefaults()
	now := s.now()

	// 1. Validate input
	email = NormalizeEmail(email)
	if email == "" || !validEmail(email) {
		return invalid("Valid email is required")
	}

	// 2. Fast cooldown check; the store re-checks atomically in step 4
	existing, err := s.Store.OTPs().Get(ctx, email)
	switch {
	case err == nil:
		if now.Sub(existing.LastSentAt) < policy.Cooldown {
			return &CooldownError{Wait: cooldownWait(policy.Cooldown, existing.LastSentAt, now)}
		}
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to load otp record", slog.Any("error", err))
		return internal(err)
	}

	// 3. Generate and hash the code
	code, err := otpx.NewGenerator(policy.Length).Code()
	if err != nil {
		log.Error("failed to generate otp", slog.Any("error", err))
		return internal(err)
	}
	hash, err := cryptox.HashSecret(code, policy.HashCost)
	if err != nil {
		log.Error("failed to hash otp", slog.Any("error", err))
		return internal(err)
	}

	// 4. Conditional upsert guarded by the cooldown
	rec := domain.OTPRecord{
		Email:      email,
		CodeHash:   hash,
		ExpiresAt:  now.Add(policy.Expiry),
		LastSentAt: now,
		CreatedAt:  now,
	}
	existing, err = s.Store.OTPs().Issue(ctx, rec, now.Add(-policy.Cooldown))
	if errors.Is(err, store.ErrConditionFailed) {
		return &CooldownError{Wait: cooldownWait(policy.Cooldown, existing.LastSentAt, now)}
	}
	if err != nil {
		log.Error("failed to store otp", slog.Any("error", err))
		return internal(err)
	}

	// 5. Deliver
	msg, err := s.Brand.OTPMessage(email, code, policy.Expiry)
	if err != nil {
		log.Error("failed to render otp email", slog.Any("error", err))
		return internal(err)
	}
	res, err := s.Mailer.Send(ctx, msg)
	if err != nil {
		d := mailx.Diagnose(res, err)
		log.Warn("otp delivery failed",
			slog.String("email", email),
			slog.String("driver", d.Driver),
			slog.String("reason", d.Error),
			slog.Bool("temporary", d.Temporary),
		)
		return ErrOTPDelivery
	}

	log.Info("otp sent", slog.String("email", email), slog.String("message_id", res.MessageID))
	return nil
}

// Verify checks code against the live record of email. Every comparison,
// successful or not, spends one attempt. Success marks the record verified;
// it is consumed by registration.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	log := slogx.FromContext(ctx)
	policy := s.Policy.withDefaults()
	now := s.now()

	// 1. Validate input
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || !validEmail(email) || code == "" {
		return invalid("Email and OTP are required")
	}

	// 2. Load and check the record state
	rec, err := s.Store.OTPs().Get(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		log.Error("failed to load otp record", slog.Any("error", err))
		return internal(err)
	}
	if rec.Attempts >= policy.MaxAttempts {
		return ErrTooManyAttempts
	}
	if rec.Expired(now) {
		return ErrOTPExpired
	}

	// 3. Compare
	match := true
	if err := cryptox.VerifySecret(rec.CodeHash, code); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("failed to compare otp", slog.Any("error", err))
			return internal(err)
		}
		match = false
	}

	// 4. Spend the attempt; the store enforces the budget
	var verifiedAt *time.Time
	if match {
		verifiedAt = &now
	}
	_, err = s.Store.OTPs().RecordAttempt(ctx, email, rec.CodeHash, policy.MaxAttempts, verifiedAt)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrOTPNotFound
	case errors.Is(err, store.ErrConditionFailed):
		return s.lostAttempt(ctx, email, rec.CodeHash, policy)
	case err != nil:
		log.Error("failed to record otp attempt", slog.Any("error", err))
		return internal(err)
	}

	if !match {
		log.Info("otp mismatch", slog.String("email", email), slog.Int("attempt", rec.Attempts+1))
		return ErrOTPMismatch
	}

	log.Info("otp verified", slog.String("email", email))
	return nil
}

// lostAttempt explains a guarded attempt that matched no record: either a
// concurrent guess used up the budget or a resend replaced the code.
func (s *OTPService) lostAttempt(ctx context.Context, email, hash string, policy OTPPolicy) error {
	cur, err := s.Store.OTPs().Get(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrOTPNotFound
	case err != nil:
		return internal(err)
	case cur.CodeHash == hash && cur.Attempts >= policy.MaxAttempts:
		return ErrTooManyAttempts
	default:
		return ErrOTPMismatch
	}
}
