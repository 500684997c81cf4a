package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

// dummyHash is compared against when no account matches, so unknown users
// cost the same bcrypt work as wrong passwords.
var dummyHash, _ = cryptox.HashSecret("quiz-login-timing-equaliser", cryptox.PasswordCost)

type LoginInput struct {
	Email    string
	Mobile   string
	Password string
}

type LoginResult struct {
	User  domain.User
	Token Token
}

type AuthService struct {
	Store  store.Store
	Tokens *TokenIssuer

	Now func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login authenticates by email or mobile. Unknown accounts and wrong
// passwords fail identically; a disabled account is only reported once the
// password matched.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Validate input
	email := NormalizeEmail(in.Email)
	mobile := NormalizeMobile(in.Mobile)
	if in.Password == "" || (email == "" && mobile == "") {
		return LoginResult{}, invalid("Email/mobile and password are required")
	}

	// 2. Look up the account
	var (
		user domain.User
		err  error
	)
	if email != "" {
		user, err = s.Store.Users().GetByEmail(ctx, email)
	} else {
		user, err = s.Store.Users().GetByMobile(ctx, mobile)
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to load user", slog.Any("error", err))
		return LoginResult{}, internal(err)
	}
	found := err == nil

	// 3. Compare the password, against a dummy hash when nobody matched
	hash := dummyHash
	if found {
		hash = user.PasswordHash
	}
	if err := cryptox.VerifySecret(hash, in.Password); err != nil || !found {
		log.Info("login rejected", slog.Bool("known_user", found))
		return LoginResult{}, ErrInvalidCredentials
	}

	// 4. Refuse disabled accounts
	if user.Disabled {
		log.Info("login for disabled account", slog.String("user_id", user.ID))
		return LoginResult{}, ErrAccountDisabled
	}

	// 5. Stamp the login and issue a token
	if err := s.Store.Users().UpdateLastLogin(ctx, user.ID, now); err != nil {
		log.Error("failed to update last login", slog.String("user_id", user.ID), slog.Any("error", err))
		return LoginResult{}, internal(err)
	}
	user.LastLoginAt = &now
	user.UpdatedAt = now

	token, err := s.Tokens.Issue(user, now)
	if err != nil {
		log.Error("failed to sign token", slog.String("user_id", user.ID), slog.Any("error", err))
		return LoginResult{}, internal(err)
	}

	log.Info("login succeeded", slog.String("user_id", user.ID))
	return LoginResult{User: user, Token: token}, nil
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, internal(err)
	}
	return u, nil
}
