package service

import (
	"errors"
	"fmt"
	"time"
)

// Kinds. Every error returned by this package matches exactly one of these
// with errors.Is; the HTTP layer maps them to status codes.
var (
	ErrInvalidInput    = errors.New("invalid_input")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate_limited")
	ErrDeliveryFailed  = errors.New("delivery_failed")
	ErrInternal        = errors.New("internal")
)

var (
	ErrOTPNotFound        = fmt.Errorf("%w: OTP not found. Please request again.", ErrNotFound)
	ErrTooManyAttempts    = fmt.Errorf("%w: Too many attempts. Request new OTP.", ErrRateLimited)
	ErrOTPExpired         = fmt.Errorf("%w: OTP expired. Request new OTP.", ErrInvalidInput)
	ErrOTPMismatch        = fmt.Errorf("%w: Invalid OTP", ErrInvalidInput)
	ErrOTPDelivery        = fmt.Errorf("%w: Failed to send OTP", ErrDeliveryFailed)
	ErrNotVerified        = fmt.Errorf("%w: Please verify email via OTP first", ErrInvalidInput)
	ErrEmailTaken         = fmt.Errorf("%w: Email already registered", ErrConflict)
	ErrMobileTaken        = fmt.Errorf("%w: Mobile already registered", ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: Invalid credentials", ErrUnauthenticated)
	ErrAccountDisabled    = fmt.Errorf("%w: Account disabled. Contact support.", ErrUnauthorized)
	ErrUserNotFound       = fmt.Errorf("%w: User not found", ErrNotFound)

	ErrFieldNotFound    = fmt.Errorf("%w: Field not found", ErrNotFound)
	ErrFieldNameTaken   = fmt.Errorf("%w: Field name already exists", ErrConflict)
	ErrQuestionNotFound = fmt.Errorf("%w: Question not found", ErrNotFound)
	ErrProgressNotFound = fmt.Errorf("%w: No progress for this field", ErrNotFound)

	ErrPaymentNotFound   = fmt.Errorf("%w: Payment not found", ErrNotFound)
	ErrAlreadyProcessed  = fmt.Errorf("%w: Already processed", ErrConflict)
	ErrAlreadyUnlocked   = fmt.Errorf("%w: Field already unlocked", ErrConflict)
	ErrUTRUsed           = fmt.Errorf("%w: UTR already submitted", ErrConflict)
	ErrFieldFree         = fmt.Errorf("%w: Field is free, no payment needed", ErrInvalidInput)
	ErrUploadsDisabled   = fmt.Errorf("%w: Screenshot uploads are not configured", ErrNotFound)
	ErrScreenshotForeign = fmt.Errorf("%w: Screenshot key does not belong to caller", ErrUnauthorized)
)

// ValidationError is an InvalidInput failure with a request specific message.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CooldownError reports a resend inside the cooldown window. Wait is in
// whole seconds and at least 1.
type CooldownError struct {
	Wait int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Please wait %ds before resending", e.Wait)
}

func (e *CooldownError) Unwrap() error { return ErrRateLimited }

// cooldownWait is cooldown minus the whole seconds elapsed since lastSent.
func cooldownWait(cooldown time.Duration, lastSent, now time.Time) int {
	elapsed := max(int(now.Sub(lastSent)/time.Second), 0)
	wait := int(cooldown/time.Second) - elapsed
	if wait < 1 {
		wait = 1
	}
	return wait
}

// Message returns the human readable part of err, without the kind prefix.
func Message(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	for _, kind := range []error{
		ErrInvalidInput, ErrUnauthenticated, ErrUnauthorized, ErrNotFound,
		ErrConflict, ErrRateLimited, ErrDeliveryFailed, ErrInternal,
	} {
		prefix := kind.Error() + ": "
		if msg := err.Error(); errors.Is(err, kind) && len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return err.Error()
}

// internal logs nothing; it marks err as an opaque Internal failure while
// keeping the cause for logs.
func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
