package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
)

// newTestStore starts a single node replica set and returns a store on a
// fresh database. Set QUIZ_INTEGRATION=1 to run these tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("QUIZ_INTEGRATION") != "1" {
		t.Skip("set QUIZ_INTEGRATION=1 to run mongo integration tests")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := NewStore(ctx, uri, "quiz_test")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var epoch = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestMongoStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("users duplicate email", func(t *testing.T) {
		u := domain.User{
			ID: idx.New().String(), Name: "Asha", Email: "asha@example.com", PasswordHash: "x",
			UserType: domain.UserTypeStudent, Role: domain.RoleUser, CreatedAt: epoch, UpdatedAt: epoch,
		}
		require.NoError(t, s.Users().Create(ctx, u))

		u.ID = idx.New().String()
		err := s.Users().Create(ctx, u)
		var dup *store.DuplicateError
		require.True(t, errors.As(err, &dup))
		require.Equal(t, "email", dup.Field)

		got, err := s.Users().GetByEmail(ctx, "asha@example.com")
		require.NoError(t, err)
		require.Equal(t, epoch, got.CreatedAt)
	})

	t.Run("otp cooldown guard", func(t *testing.T) {
		rec := domain.OTPRecord{
			Email: "otp@example.com", CodeHash: "h1",
			ExpiresAt: time.Now().Add(time.Hour), LastSentAt: epoch, CreatedAt: epoch,
		}
		_, err := s.OTPs().Issue(ctx, rec, epoch.Add(-time.Minute))
		require.NoError(t, err)

		rec.CodeHash = "h2"
		rec.LastSentAt = epoch.Add(10 * time.Second)
		existing, err := s.OTPs().Issue(ctx, rec, epoch.Add(-50*time.Second))
		require.ErrorIs(t, err, store.ErrConditionFailed)
		require.Equal(t, "h1", existing.CodeHash)

		rec.LastSentAt = epoch.Add(time.Minute)
		got, err := s.OTPs().Issue(ctx, rec, epoch)
		require.NoError(t, err)
		require.Equal(t, "h2", got.CodeHash)
		require.Zero(t, got.Attempts)
	})

	t.Run("otp attempts", func(t *testing.T) {
		rec := domain.OTPRecord{
			Email: "attempts@example.com", CodeHash: "h",
			ExpiresAt: time.Now().Add(time.Hour), LastSentAt: epoch, CreatedAt: epoch,
		}
		_, err := s.OTPs().Issue(ctx, rec, epoch.Add(-time.Minute))
		require.NoError(t, err)

		_, err = s.OTPs().RecordAttempt(ctx, rec.Email, "h", 1, nil)
		require.NoError(t, err)
		_, err = s.OTPs().RecordAttempt(ctx, rec.Email, "h", 1, nil)
		require.ErrorIs(t, err, store.ErrConditionFailed)
		_, err = s.OTPs().RecordAttempt(ctx, "none@example.com", "h", 1, nil)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("field cascade and progress", func(t *testing.T) {
		f := domain.Field{ID: idx.New().String(), Name: "Aptitude", CreatedAt: epoch, UpdatedAt: epoch}
		require.NoError(t, s.Fields().Create(ctx, f))
		q := domain.Question{
			ID: idx.New().String(), FieldID: f.ID, Type: domain.QuestionMCQ, Text: "?",
			Options: []domain.Option{{Text: "a"}}, CorrectAnswer: "a", CreatedAt: epoch, UpdatedAt: epoch,
		}
		require.NoError(t, s.Questions().Create(ctx, q))

		many, err := s.Questions().GetMany(ctx, f.ID, []string{q.ID, "other"})
		require.NoError(t, err)
		require.Len(t, many, 1)

		p := domain.Progress{ID: idx.New().String(), UserID: "u1", FieldID: f.ID, CreatedAt: epoch}
		entries := []domain.AnswerEntry{{QuestionID: q.ID, Answer: "a", IsCorrect: true, Batch: 1, AnsweredAt: epoch}}
		p.Apply(entries, 1, 1, epoch)
		require.NoError(t, s.Progress().SaveBatch(ctx, p, entries))
		require.NoError(t, s.Progress().SaveBatch(ctx, p, entries))

		got, err := s.Progress().Get(ctx, "u1", f.ID)
		require.NoError(t, err)
		require.Len(t, got.Entries, 2)

		require.NoError(t, s.Fields().Delete(ctx, f.ID))
		_, err = s.Questions().Get(ctx, q.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Progress().Get(ctx, "u1", f.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("payment review guard", func(t *testing.T) {
		p := domain.Payment{
			ID: idx.New().String(), OrderID: idx.New().String(), UserID: "u1", FieldID: "f1",
			Method: domain.PaymentMethodUPIUTR, AmountPaise: 100, Status: domain.PaymentPending,
			CreatedAt: epoch, UpdatedAt: epoch,
		}
		require.NoError(t, s.Payments().Create(ctx, p))

		_, err := s.Payments().AttachProof(ctx, p.OrderID, "u1", "UTR1", "", epoch)
		require.NoError(t, err)
		_, err = s.Payments().AttachProof(ctx, p.OrderID, "u1", "UTR2", "", epoch)
		require.ErrorIs(t, err, store.ErrConditionFailed)
		got, err := s.Payments().Get(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, "UTR1", got.UTR)

		_, err = s.Payments().Review(ctx, p.ID, domain.PaymentSuccess, "admin", epoch)
		require.NoError(t, err)
		_, err = s.Payments().Review(ctx, p.ID, domain.PaymentFailed, "admin", epoch)
		require.ErrorIs(t, err, store.ErrConditionFailed)

		ok, err := s.Payments().HasSuccessful(ctx, "u1", "f1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			require.NoError(t, tx.Fields().Create(ctx, domain.Field{ID: "tx-field", Name: "Tx", CreatedAt: epoch, UpdatedAt: epoch}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.Fields().Get(ctx, "tx-field")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
