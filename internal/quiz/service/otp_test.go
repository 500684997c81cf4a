package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

func TestCooldownWait(t *testing.T) {
	t.Parallel()

	sent := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.Equal(t, 30, cooldownWait(30*time.Second, sent, sent))
	require.Equal(t, 20, cooldownWait(30*time.Second, sent, sent.Add(10*time.Second)))
	require.Equal(t, 21, cooldownWait(30*time.Second, sent, sent.Add(9500*time.Millisecond)))
	require.Equal(t, 1, cooldownWait(30*time.Second, sent, sent.Add(30*time.Second)))
	require.Equal(t, 30, cooldownWait(30*time.Second, sent, sent.Add(-time.Minute)))
}

func TestOTPRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, email := range []string{"", "   ", "asha", "asha@example", "a b@example.com"} {
			err := f.otp.Request(ctx, email)
			require.ErrorIs(t, err, ErrInvalidInput, email)
			require.Equal(t, "Valid email is required", Message(err))
		}
		require.Empty(t, f.mail.Messages())
	})

	t.Run("normalises and mails a six digit code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.NoError(t, f.otp.Request(ctx, "  Asha@Example.COM "))

		code := f.lastCode(t, "asha@example.com")
		require.Len(t, code, 6)

		rec, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.NotContains(t, rec.CodeHash, code)
		require.Zero(t, rec.Attempts)
		require.Equal(t, f.clock.Now().Add(10*time.Minute), rec.ExpiresAt)
	})

	t.Run("resend inside cooldown reports the wait", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))
		f.clock.Advance(12 * time.Second)

		err := f.otp.Request(ctx, "asha@example.com")
		var cool *CooldownError
		require.ErrorAs(t, err, &cool)
		require.ErrorIs(t, err, ErrRateLimited)
		require.Equal(t, 18, cool.Wait)
		require.Equal(t, "Please wait 18s before resending", err.Error())
		require.Len(t, f.mail.Messages(), 1)
	})

	t.Run("resend after cooldown replaces the code and resets attempts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))
		first, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.ErrorIs(t, f.otp.Verify(ctx, "asha@example.com", "000000x"), ErrOTPMismatch)

		f.clock.Advance(30 * time.Second)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))

		second, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.NotEqual(t, first.CodeHash, second.CodeHash)
		require.Zero(t, second.Attempts)
		require.Len(t, f.mail.Messages(), 2)
	})

	t.Run("delivery failure keeps the record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.mail.SetFailure(errors.New("smtp: 421 try later"))

		err := f.otp.Request(ctx, "asha@example.com")
		require.ErrorIs(t, err, ErrOTPDelivery)
		require.ErrorIs(t, err, ErrDeliveryFailed)

		_, err = f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)

		f.mail.SetFailure(nil)
		require.ErrorIs(t, f.otp.Request(ctx, "asha@example.com"), ErrRateLimited)
	})
}

func TestOTPVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("requires email and code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.otp.Verify(ctx, "asha@example.com", " ")
		require.ErrorIs(t, err, ErrInvalidInput)
		require.Equal(t, "Email and OTP are required", Message(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		require.ErrorIs(t, f.otp.Verify(ctx, "nobody@example.com", "123456"), ErrOTPNotFound)
	})

	t.Run("correct code marks the record verified", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))

		require.NoError(t, f.otp.Verify(ctx, "ASHA@example.com", " "+f.lastCode(t, "asha@example.com")+" "))

		rec, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.True(t, rec.Verified())
		require.Equal(t, 1, rec.Attempts)
	})

	t.Run("expires one second after the deadline", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))
		code := f.lastCode(t, "asha@example.com")

		f.clock.Advance(10*time.Minute + time.Second)
		require.ErrorIs(t, f.otp.Verify(ctx, "asha@example.com", code), ErrOTPExpired)
	})

	t.Run("accepts at the exact deadline", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))
		code := f.lastCode(t, "asha@example.com")

		f.clock.Advance(10 * time.Minute)
		require.NoError(t, f.otp.Verify(ctx, "asha@example.com", code))
	})

	t.Run("sixth attempt is refused even with the right code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))
		code := f.lastCode(t, "asha@example.com")

		for i := 0; i < 5; i++ {
			require.ErrorIs(t, f.otp.Verify(ctx, "asha@example.com", "wrong"), ErrOTPMismatch)
		}
		err := f.otp.Verify(ctx, "asha@example.com", code)
		require.ErrorIs(t, err, ErrTooManyAttempts)
		require.ErrorIs(t, err, ErrRateLimited)

		rec, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Equal(t, 5, rec.Attempts)
		require.False(t, rec.Verified())
	})

	t.Run("concurrent guesses never exceed the budget", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.otp.Request(ctx, "asha@example.com"))

		errs := make(chan error, 12)
		for i := 0; i < 12; i++ {
			go func() { errs <- f.otp.Verify(ctx, "asha@example.com", "wrong") }()
		}

		var mismatches, refused int
		for i := 0; i < 12; i++ {
			err := <-errs
			switch {
			case errors.Is(err, ErrOTPMismatch):
				mismatches++
			case errors.Is(err, ErrTooManyAttempts):
				refused++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		require.Equal(t, 5, mismatches)
		require.Equal(t, 7, refused)

		rec, err := f.store.OTPs().Get(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Equal(t, 5, rec.Attempts)
	})
}

func TestHousekeepingPurgesExpiredOTPs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.otp.Request(ctx, "old@example.com"))
	f.clock.Advance(11 * time.Minute)
	require.NoError(t, f.otp.Request(ctx, "new@example.com"))

	hk := NewHousekeepingService(f.store, slogx.Discard(), "")
	hk.Now = f.clock.Now
	hk.Cleanup()

	_, err := f.store.OTPs().Get(ctx, "old@example.com")
	require.Error(t, err)
	_, err = f.store.OTPs().Get(ctx, "new@example.com")
	require.NoError(t, err)
}

func TestHousekeepingRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	hk := NewHousekeepingService(f.store, slogx.Discard(), "every now and then")
	require.Error(t, hk.Start())
	hk.Stop()
}
