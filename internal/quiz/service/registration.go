package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/cryptox"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/mailx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
	UserType string
}

type RegisterResult struct {
	User         domain.User
	Token        Token
	WelcomeEmail mailx.Diagnostics
}

// RegistrationService creates accounts for verified email addresses.
type RegistrationService struct {
	Store  store.Store
	Mailer mailx.Sender
	Brand  mailx.Brand
	Tokens *TokenIssuer
	Policy AuthPolicy

	Now func() time.Time
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (in RegisterInput) normalize() RegisterInput {
	return RegisterInput{
		Name:     strings.TrimSpace(in.Name),
		Email:    NormalizeEmail(in.Email),
		Mobile:   NormalizeMobile(in.Mobile),
		Password: in.Password,
		UserType: strings.ToLower(strings.TrimSpace(in.UserType)),
	}
}

func (in RegisterInput) validate(minPassword int) error {
	if m := missing(
		[2]string{"name", in.Name},
		[2]string{"email", in.Email},
		[2]string{"mobile", in.Mobile},
		[2]string{"password", in.Password},
		[2]string{"userType", in.UserType},
	); len(m) > 0 {
		return invalid("Missing fields: %s", strings.Join(m, ", "))
	}
	if !validEmail(in.Email) {
		return invalid("Enter a valid email")
	}
	if !validMobile(in.Mobile) {
		return invalid("Mobile must be exactly 10 digits")
	}
	if !domain.UserType(in.UserType).Valid() {
		return invalid("Invalid userType")
	}
	if len(in.Password) < minPassword {
		return invalid("Password must be at least %d characters", minPassword)
	}
	return nil
}

// Register creates the account once the email's code was verified. The
// user insert and the OTP deletion commit together; unique indexes turn a
// concurrent duplicate into a conflict. The welcome email is best effort.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	log := slogx.FromContext(ctx)
	policy := s.Policy.withDefaults()
	now := s.now()

	// 1. Validate input
	in = in.normalize()
	if err := in.validate(policy.MinPasswordLength); err != nil {
		return RegisterResult{}, err
	}

	// 2. Require a live, verified code. The winner of a concurrent
	// registration consumes the code, so a missing code for an existing
	// account reports the conflict instead.
	rec, err := s.Store.OTPs().Get(ctx, in.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return RegisterResult{}, s.notVerified(ctx, in)
	case err != nil:
		log.Error("failed to load otp record", slog.Any("error", err))
		return RegisterResult{}, internal(err)
	case rec.Expired(now) || !rec.Verified():
		return RegisterResult{}, s.notVerified(ctx, in)
	}

	// 3. Early duplicate checks for a precise message; the indexes decide races
	if err := s.checkAvailable(ctx, in.Email, in.Mobile); err != nil {
		return RegisterResult{}, err
	}

	// 4. Hash the password
	hash, err := cryptox.HashSecret(in.Password, policy.PasswordCost)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return RegisterResult{}, internal(err)
	}

	user := domain.User{
		ID:            idx.New().String(),
		Name:          in.Name,
		Email:         in.Email,
		Mobile:        in.Mobile,
		PasswordHash:  hash,
		UserType:      domain.UserType(in.UserType),
		Role:          domain.RoleUser,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// 5. Create the user and consume the code atomically
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		return tx.OTPs().Delete(ctx, in.Email)
	})
	if err != nil {
		if conflict := duplicateConflict(err); conflict != nil {
			log.Info("registration lost a uniqueness race", slog.String("email", in.Email))
			return RegisterResult{}, conflict
		}
		log.Error("failed to create user", slog.Any("error", err))
		return RegisterResult{}, internal(err)
	}

	// 6. Issue the token
	token, err := s.Tokens.Issue(user, now)
	if err != nil {
		log.Error("failed to sign token", slog.String("user_id", user.ID), slog.Any("error", err))
		return RegisterResult{}, internal(err)
	}

	// 7. Best effort welcome email
	welcome := s.sendWelcome(ctx, user)

	log.Info("user registered", slog.String("user_id", user.ID), slog.Bool("welcome_sent", welcome.Sent))
	return RegisterResult{User: user, Token: token, WelcomeEmail: welcome}, nil
}

// notVerified is ErrNotVerified unless the email or mobile already belongs
// to an account.
func (s *RegistrationService) notVerified(ctx context.Context, in RegisterInput) error {
	if err := s.checkAvailable(ctx, in.Email, in.Mobile); err != nil {
		return err
	}
	return ErrNotVerified
}

func (s *RegistrationService) checkAvailable(ctx context.Context, email, mobile string) error {
	if _, err := s.Store.Users().GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return internal(err)
	}
	if _, err := s.Store.Users().GetByMobile(ctx, mobile); err == nil {
		return ErrMobileTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return internal(err)
	}
	return nil
}

func (s *RegistrationService) sendWelcome(ctx context.Context, u domain.User) mailx.Diagnostics {
	log := slogx.FromContext(ctx)

	msg, err := s.Brand.WelcomeMessage(u.Email, u.Name)
	if err != nil {
		log.Warn("failed to render welcome email", slog.Any("error", err))
		return mailx.Diagnose(mailx.Result{}, err)
	}

	res, err := s.Mailer.Send(ctx, msg)
	d := mailx.Diagnose(res, err)
	if err != nil {
		log.Warn("welcome email failed",
			slog.String("user_id", u.ID),
			slog.String("driver", d.Driver),
			slog.String("reason", d.Error),
			slog.Bool("temporary", d.Temporary),
		)
	}
	return d
}

// duplicateConflict maps a store uniqueness violation to the matching
// conflict, or nil when err is something else.
func duplicateConflict(err error) error {
	var dup *store.DuplicateError
	if !errors.As(err, &dup) {
		return nil
	}
	switch dup.Field {
	case "email":
		return ErrEmailTaken
	case "mobile":
		return ErrMobileTaken
	case "name":
		return ErrFieldNameTaken
	case "utr":
		return ErrUTRUsed
	default:
		return fmt.Errorf("%w: %s already exists", ErrConflict, dup.Field)
	}
}
