package app

import (
	"fmt"
	"log/slog"

	"github.com/himanshu0633/mytestbuddiesbackend/pkg/jwtx"
)

// InitTokenKeys creates the KeyManager that signs access tokens.
//
// Modes:
//   - shared secret: QUIZ_JWT_SECRET is set. Tokens are signed with HS256,
//     survive restarts and verify on every replica. The JWKS stays empty.
//   - ephemeral: no secret. Ed25519 keys are generated on startup and kept
//     in memory only, so all tokens become invalid when the service restarts.
func InitTokenKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		NumKeys:  cfg.NumKeys,
	}

	if cfg.JWTSecret != "" {
		km, err := jwtx.NewHMACKeyManager(opts, []byte(cfg.JWTSecret))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize HMAC key manager (QUIZ_JWT_SECRET needs %d bytes): %w", jwtx.MinHMACSecret, err)
		}
		logger.Info("token keys loaded", "algorithm", km.Algorithm(), "issuer", cfg.Issuer)
		return km, nil
	}

	km, err := jwtx.NewEphemeralKeyManager(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}
	logger.Info("ephemeral signing keys generated",
		"algorithm", km.Algorithm(),
		"num_keys", km.KeySet.Len(),
		"issuer", cfg.Issuer,
	)
	logger.Warn("ephemeral key mode - tokens will not survive restarts")
	return km, nil
}
