package quiz_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
)

// TestRateLimitSendOTP verifies send-otp is limited per IP and email with
// the production defaults (5 req/min).
func TestRateLimitSendOTP(t *testing.T) {
	c := setupQuizContainer(t, map[string]string{
		"RATELIMIT_STRICT_REQUESTS": "",
		"RATELIMIT_STRICT_BURST":    "",
	})
	client := quizsdk.NewClient(c.BaseURL)
	ctx := t.Context()

	// Resends inside the OTP cooldown are rejected by the service with a
	// retry_after; they still count against the limiter.
	for i := range 5 {
		_, err := client.SendOTP(ctx, "flood@example.com")
		if err != nil {
			var apiErr *quizsdk.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Positive(t, apiErr.RetryAfter, "request %d should only hit the cooldown", i+1)
		}
	}

	_, err := client.SendOTP(ctx, "flood@example.com")
	assertStatus(t, err, http.StatusTooManyRequests, quizsdk.ErrorCodeRateLimited)
	var apiErr *quizsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Zero(t, apiErr.RetryAfter)
	require.Contains(t, apiErr.Description, "Too many requests")

	// A different address has its own bucket.
	_, err = client.SendOTP(ctx, "other@example.com")
	require.NoError(t, err)
}
