package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

// UserService holds administrative account actions.
type UserService struct {
	Store  store.Store
	Policy AuthPolicy

	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SetDisabled blocks or unblocks logins for userID. Outstanding tokens stay
// valid until they expire.
func (s *UserService) SetDisabled(ctx context.Context, actorID, userID string, disabled bool) (domain.User, error) {
	log := slogx.FromContext(ctx)

	if actorID == userID && disabled {
		return domain.User{}, invalid("Admins cannot disable themselves")
	}

	err := s.Store.Users().SetDisabled(ctx, userID, disabled, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		log.Error("failed to update user", slog.String("user_id", userID), slog.Any("error", err))
		return domain.User{}, internal(err)
	}

	u, err := s.Store.Users().GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, internal(err)
	}

	log.Info("user access changed",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.Bool("disabled", disabled),
	)
	return u, nil
}

// SeedAdmin creates an admin account for email unless one already exists.
// It reports whether a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, name, email, password string) (bool, error) {
	log := slogx.FromContext(ctx)
	policy := s.Policy.withDefaults()

	email = NormalizeEmail(email)
	if !validEmail(email) {
		return false, invalid("Enter a valid email")
	}
	if len(password) < policy.MinPasswordLength {
		return false, invalid("Password must be at least %d characters", policy.MinPasswordLength)
	}

	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, internal(err)
	}

	hash, err := cryptox.HashSecret(password, policy.PasswordCost)
	if err != nil {
		return false, internal(err)
	}
	if name == "" {
		name = "Administrator"
	}

	now := s.now()
	err = s.Store.Users().Create(ctx, domain.User{
		ID:            idx.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		UserType:      domain.UserTypeGeneral,
		Role:          domain.RoleAdmin,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, internal(err)
	}

	log.Info("admin account seeded", slog.String("email", email))
	return true, nil
}
