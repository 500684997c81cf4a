package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var epoch = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func seedUser(t *testing.T, s *Store, email, mobile string) domain.User {
	t.Helper()
	u := domain.User{
		ID:            idx.New().String(),
		Name:          "Asha",
		Email:         email,
		Mobile:        mobile,
		PasswordHash:  "$2a$10$hash",
		UserType:      domain.UserTypeStudent,
		Role:          domain.RoleUser,
		EmailVerified: true,
		CreatedAt:     epoch,
		UpdatedAt:     epoch,
	}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func seedField(t *testing.T, s *Store, name string, at time.Time) domain.Field {
	t.Helper()
	f := domain.Field{
		ID:                     idx.New().String(),
		Name:                   name,
		DefaultTimePerQuestion: 60,
		CreatedAt:              at,
		UpdatedAt:              at,
	}
	require.NoError(t, s.Fields().Create(context.Background(), f))
	return f
}

func seedQuestion(t *testing.T, s *Store, fieldID, answer string, at time.Time) domain.Question {
	t.Helper()
	q := domain.Question{
		ID:            idx.New().String(),
		FieldID:       fieldID,
		Type:          domain.QuestionMCQ,
		Text:          "2 + 2 = ?",
		Options:       []domain.Option{{Text: "3"}, {Text: "4"}},
		CorrectAnswer: answer,
		Solution:      "basic arithmetic",
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, s.Questions().Create(context.Background(), q))
	return q
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create and lookup", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "9876543210")

		got, err := s.Users().GetByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Equal(t, domain.UserTypeStudent, got.UserType)
		require.True(t, got.EmailVerified)
		require.Nil(t, got.LastLoginAt)
		require.Equal(t, epoch, got.CreatedAt)

		got, err = s.Users().GetByMobile(ctx, "9876543210")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("duplicate email names the column", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "asha@example.com", "")

		err := s.Users().Create(ctx, domain.User{
			ID: idx.New().String(), Name: "B", Email: "asha@example.com", PasswordHash: "x",
			UserType: domain.UserTypeGeneral, Role: domain.RoleUser, CreatedAt: epoch, UpdatedAt: epoch,
		})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)
	})

	t.Run("users without mobile do not collide", func(t *testing.T) {
		s := newTestStore(t)
		seedUser(t, s, "a@example.com", "")
		seedUser(t, s, "b@example.com", "")
	})

	t.Run("last login and disable", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		later := epoch.Add(time.Hour)

		require.NoError(t, s.Users().UpdateLastLogin(ctx, u.ID, later))
		require.NoError(t, s.Users().SetDisabled(ctx, u.ID, true, later))

		got, err := s.Users().GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.True(t, got.Disabled)
		require.NotNil(t, got.LastLoginAt)
		require.Equal(t, later, *got.LastLoginAt)

		require.ErrorIs(t, s.Users().SetDisabled(ctx, "missing", true, later), store.ErrNotFound)
	})

	t.Run("missing user", func(t *testing.T) {
		s := newTestStore(t)
		_, err := s.Users().GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestOTPs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cooldown := 60 * time.Second

	issue := func(s *Store, hash string, now time.Time) (domain.OTPRecord, error) {
		return s.OTPs().Issue(ctx, domain.OTPRecord{
			Email:      "asha@example.com",
			CodeHash:   hash,
			ExpiresAt:  now.Add(10 * time.Minute),
			LastSentAt: now,
			CreatedAt:  now,
		}, now.Add(-cooldown))
	}

	t.Run("first issue inserts", func(t *testing.T) {
		s := newTestStore(t)
		rec, err := issue(s, "h1", epoch)
		require.NoError(t, err)
		require.Equal(t, "h1", rec.CodeHash)
		require.Zero(t, rec.Attempts)
		require.False(t, rec.Verified())
	})

	t.Run("reissue inside cooldown is refused", func(t *testing.T) {
		s := newTestStore(t)
		_, err := issue(s, "h1", epoch)
		require.NoError(t, err)

		existing, err := issue(s, "h2", epoch.Add(20*time.Second))
		require.ErrorIs(t, err, store.ErrConditionFailed)
		require.Equal(t, "h1", existing.CodeHash)
		require.Equal(t, epoch, existing.LastSentAt)
	})

	t.Run("reissue after cooldown resets state", func(t *testing.T) {
		s := newTestStore(t)
		_, err := issue(s, "h1", epoch)
		require.NoError(t, err)
		verified := epoch.Add(time.Second)
		_, err = s.OTPs().RecordAttempt(ctx, "asha@example.com", "h1", 5, &verified)
		require.NoError(t, err)

		rec, err := issue(s, "h2", epoch.Add(cooldown))
		require.NoError(t, err)
		require.Equal(t, "h2", rec.CodeHash)
		require.Zero(t, rec.Attempts)
		require.Nil(t, rec.VerifiedAt)
	})

	t.Run("attempt budget is enforced", func(t *testing.T) {
		s := newTestStore(t)
		_, err := issue(s, "h1", epoch)
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			rec, err := s.OTPs().RecordAttempt(ctx, "asha@example.com", "h1", 3, nil)
			require.NoError(t, err)
			require.Equal(t, i, rec.Attempts)
		}
		_, err = s.OTPs().RecordAttempt(ctx, "asha@example.com", "h1", 3, nil)
		require.ErrorIs(t, err, store.ErrConditionFailed)
	})

	t.Run("stale hash does not count", func(t *testing.T) {
		s := newTestStore(t)
		_, err := issue(s, "h1", epoch)
		require.NoError(t, err)

		_, err = s.OTPs().RecordAttempt(ctx, "asha@example.com", "old", 5, nil)
		require.ErrorIs(t, err, store.ErrConditionFailed)

		_, err = s.OTPs().RecordAttempt(ctx, "nobody@example.com", "h1", 5, nil)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		s := newTestStore(t)
		_, err := issue(s, "h1", epoch)
		require.NoError(t, err)

		n, err := s.OTPs().DeleteExpired(ctx, epoch.Add(5*time.Minute))
		require.NoError(t, err)
		require.Zero(t, n)

		n, err = s.OTPs().DeleteExpired(ctx, epoch.Add(11*time.Minute))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		_, err = s.OTPs().Get(ctx, "asha@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestFieldsAndQuestions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("list is newest first", func(t *testing.T) {
		s := newTestStore(t)
		seedField(t, s, "Aptitude", epoch)
		seedField(t, s, "Reasoning", epoch.Add(time.Minute))

		fields, err := s.Fields().List(ctx)
		require.NoError(t, err)
		require.Len(t, fields, 2)
		require.Equal(t, "Reasoning", fields[0].Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		s := newTestStore(t)
		seedField(t, s, "Aptitude", epoch)
		err := s.Fields().Create(ctx, domain.Field{ID: idx.New().String(), Name: "Aptitude", CreatedAt: epoch, UpdatedAt: epoch})
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "name", dup.Field)
	})

	t.Run("options round trip", func(t *testing.T) {
		s := newTestStore(t)
		f := seedField(t, s, "Aptitude", epoch)
		q := seedQuestion(t, s, f.ID, "4", epoch)

		got, err := s.Questions().Get(ctx, q.ID)
		require.NoError(t, err)
		require.Equal(t, q.Options, got.Options)
		require.Equal(t, "4", got.CorrectAnswer)
	})

	t.Run("get many scopes to field", func(t *testing.T) {
		s := newTestStore(t)
		a := seedField(t, s, "Aptitude", epoch)
		b := seedField(t, s, "Reasoning", epoch)
		qa := seedQuestion(t, s, a.ID, "4", epoch)
		qb := seedQuestion(t, s, b.ID, "4", epoch)

		got, err := s.Questions().GetMany(ctx, a.ID, []string{qa.ID, qb.ID, "unknown"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Contains(t, got, qa.ID)

		got, err = s.Questions().GetMany(ctx, a.ID, nil)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("question requires existing field", func(t *testing.T) {
		s := newTestStore(t)
		err := s.Questions().Create(ctx, domain.Question{
			ID: idx.New().String(), FieldID: "missing", Type: domain.QuestionMCQ, Text: "?",
			CreatedAt: epoch, UpdatedAt: epoch,
		})
		require.Error(t, err)
	})

	t.Run("field delete cascades", func(t *testing.T) {
		s := newTestStore(t)
		f := seedField(t, s, "Aptitude", epoch)
		q := seedQuestion(t, s, f.ID, "4", epoch)
		u := seedUser(t, s, "asha@example.com", "")
		require.NoError(t, s.Progress().SaveBatch(ctx, domain.Progress{
			ID: idx.New().String(), UserID: u.ID, FieldID: f.ID, Submissions: 1, CreatedAt: epoch, UpdatedAt: epoch,
		}, nil))

		require.NoError(t, s.Fields().Delete(ctx, f.ID))

		_, err := s.Questions().Get(ctx, q.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Progress().Get(ctx, u.ID, f.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		require.ErrorIs(t, s.Fields().Delete(ctx, f.ID), store.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		s := newTestStore(t)
		f := seedField(t, s, "Aptitude", epoch)
		f.Description = "numbers"
		f.PricePaise = 4900
		require.NoError(t, s.Fields().Update(ctx, f))

		got, err := s.Fields().Get(ctx, f.ID)
		require.NoError(t, err)
		require.Equal(t, "numbers", got.Description)
		require.EqualValues(t, 4900, got.PricePaise)

		f.ID = "missing"
		require.ErrorIs(t, s.Fields().Update(ctx, f), store.ErrNotFound)
	})
}

func TestProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := newTestStore(t)
	f := seedField(t, s, "Aptitude", epoch)
	u := seedUser(t, s, "asha@example.com", "")

	p := domain.Progress{ID: idx.New().String(), UserID: u.ID, FieldID: f.ID, CreatedAt: epoch, UpdatedAt: epoch}
	first := []domain.AnswerEntry{{QuestionID: "q1", Answer: "4", IsCorrect: true, Batch: 1, AnsweredAt: epoch}}
	p.Apply(first, 1, 2, epoch)
	require.NoError(t, s.Progress().SaveBatch(ctx, p, first))

	// A second save with a fresh id must keep the stored one.
	second := []domain.AnswerEntry{{QuestionID: "q2", Answer: "x", Batch: 2, AnsweredAt: epoch.Add(time.Minute)}}
	p2 := p
	p2.ID = idx.New().String()
	p2.Apply(second, 0, 1, epoch.Add(time.Minute))
	require.NoError(t, s.Progress().SaveBatch(ctx, p2, second))

	got, err := s.Progress().Get(ctx, u.ID, f.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
	require.Equal(t, 0, got.TotalCorrect)
	require.Equal(t, 1, got.TotalAnswered)
	require.Equal(t, 2, got.Submissions)
	require.Len(t, got.Entries, 2)
	require.Equal(t, "q1", got.Entries[0].QuestionID)
	require.True(t, got.Entries[0].IsCorrect)
	require.Equal(t, 2, got.Entries[1].Batch)
}

func TestPayments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newPayment := func(t *testing.T, s *Store, userID, fieldID string) domain.Payment {
		t.Helper()
		p := domain.Payment{
			ID:          idx.New().String(),
			OrderID:     idx.New().String(),
			UserID:      userID,
			FieldID:     fieldID,
			Method:      domain.PaymentMethodUPIUTR,
			AmountPaise: 9900,
			Status:      domain.PaymentPending,
			CreatedAt:   epoch,
			UpdatedAt:   epoch,
		}
		require.NoError(t, s.Payments().Create(ctx, p))
		return p
	}

	t.Run("attach proof then review", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		p := newPayment(t, s, u.ID, "field-1")

		got, err := s.Payments().AttachProof(ctx, p.OrderID, u.ID, "123456789012", "payments/k.png", epoch.Add(time.Minute))
		require.NoError(t, err)
		require.True(t, got.HasProof())
		require.Equal(t, "payments/k.png", got.ScreenshotKey)

		ok, err := s.Payments().HasSuccessful(ctx, u.ID, "field-1")
		require.NoError(t, err)
		require.False(t, ok)

		got, err = s.Payments().Review(ctx, p.ID, domain.PaymentSuccess, "admin-1", epoch.Add(2*time.Minute))
		require.NoError(t, err)
		require.Equal(t, domain.PaymentSuccess, got.Status)
		require.NotNil(t, got.ReviewedAt)

		ok, err = s.Payments().HasSuccessful(ctx, u.ID, "field-1")
		require.NoError(t, err)
		require.True(t, ok)

		_, err = s.Payments().Review(ctx, p.ID, domain.PaymentFailed, "admin-1", epoch)
		require.ErrorIs(t, err, store.ErrConditionFailed)
		_, err = s.Payments().AttachProof(ctx, p.OrderID, u.ID, "999", "", epoch)
		require.ErrorIs(t, err, store.ErrConditionFailed)
	})

	t.Run("foreign order looks missing", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		p := newPayment(t, s, u.ID, "field-1")

		_, err := s.Payments().AttachProof(ctx, p.OrderID, "someone-else", "123", "", epoch)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Payments().Review(ctx, "missing", domain.PaymentSuccess, "a", epoch)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("utr is single use", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		a := newPayment(t, s, u.ID, "field-1")
		b := newPayment(t, s, u.ID, "field-2")

		_, err := s.Payments().AttachProof(ctx, a.OrderID, u.ID, "123456789012", "", epoch)
		require.NoError(t, err)
		_, err = s.Payments().AttachProof(ctx, b.OrderID, u.ID, "123456789012", "", epoch)
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "utr", dup.Field)
	})

	t.Run("proof is attached once", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		a := newPayment(t, s, u.ID, "field-1")
		b := newPayment(t, s, u.ID, "field-2")

		_, err := s.Payments().AttachProof(ctx, a.OrderID, u.ID, "UTR12345678", "payments/k1.png", epoch)
		require.NoError(t, err)
		_, err = s.Payments().AttachProof(ctx, a.OrderID, u.ID, "UTR87654321", "", epoch)
		require.ErrorIs(t, err, store.ErrConditionFailed)

		got, err := s.Payments().Get(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "UTR12345678", got.UTR)
		require.Equal(t, "payments/k1.png", got.ScreenshotKey)

		// The first UTR stays held.
		_, err = s.Payments().AttachProof(ctx, b.OrderID, u.ID, "UTR12345678", "", epoch)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("list filters", func(t *testing.T) {
		s := newTestStore(t)
		u := seedUser(t, s, "asha@example.com", "")
		a := newPayment(t, s, u.ID, "field-1")
		newPayment(t, s, u.ID, "field-2")
		_, err := s.Payments().Review(ctx, a.ID, domain.PaymentFailed, "admin", epoch)
		require.NoError(t, err)

		all, err := s.Payments().List(ctx, store.PaymentFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)

		pending, err := s.Payments().List(ctx, store.PaymentFilter{Status: domain.PaymentPending})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, "field-2", pending[0].FieldID)

		one, err := s.Payments().List(ctx, store.PaymentFilter{UserID: u.ID, Limit: 1})
		require.NoError(t, err)
		require.Len(t, one, 1)
	})
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Fields().Create(ctx, domain.Field{ID: "f1", Name: "Aptitude", CreatedAt: epoch, UpdatedAt: epoch}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Fields().Get(ctx, "f1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
