package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, []string{"quiz-api"}, cfg.Audience)
	require.Equal(t, service.DefaultOTPPolicy(), cfg.OTPPolicy)
	require.Equal(t, service.DefaultHousekeepingSchedule, cfg.HousekeepingSchedule)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("QUIZ_STORE_DRIVER", "Mongo")
	t.Setenv("QUIZ_MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	t.Setenv("CORS_ORIGIN", "https://a.example, ,https://b.example")
	t.Setenv("OTP_RESEND_COOLDOWN", "45")
	t.Setenv("OTP_EXPIRY", "5m")
	t.Setenv("OTP_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("SMTP_SECURE", "true")
	t.Setenv("SMTP_PORT", "465")

	cfg := LoadConfig()

	require.Equal(t, "mongo", cfg.StoreDriver)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	require.Equal(t, 45*time.Second, cfg.OTPPolicy.Cooldown)
	require.Equal(t, 5*time.Minute, cfg.OTPPolicy.Expiry)
	require.Equal(t, 5, cfg.OTPPolicy.MaxAttempts)
	require.True(t, cfg.SMTPSecure)
	require.Equal(t, 465, cfg.SMTPPort)
}

func TestInitTokenKeys(t *testing.T) {
	t.Run("ephemeral without secret", func(t *testing.T) {
		km, err := InitTokenKeys(Config{Issuer: "mytestbuddies", NumKeys: 3}, slogx.Discard())
		require.NoError(t, err)
		require.Equal(t, jwtx.AlgorithmEdDSA, km.Algorithm())
		require.Len(t, km.KeySet.PublicJWKS().Keys, 3)
	})

	t.Run("hmac with secret", func(t *testing.T) {
		km, err := InitTokenKeys(Config{
			Issuer:    "mytestbuddies",
			JWTSecret: "0123456789abcdef0123456789abcdef",
		}, slogx.Discard())
		require.NoError(t, err)
		require.Equal(t, jwtx.AlgorithmHS256, km.Algorithm())
		require.Empty(t, km.KeySet.PublicJWKS().Keys)
	})

	t.Run("short secret", func(t *testing.T) {
		_, err := InitTokenKeys(Config{Issuer: "mytestbuddies", JWTSecret: "short"}, slogx.Discard())
		require.ErrorIs(t, err, jwtx.ErrWeakSecret)
	})
}
