package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
)

func seedLearner(t *testing.T, f *fixture, email string) domain.User {
	t.Helper()
	now := f.clock.Now()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Learner",
		Email:        email,
		PasswordHash: "$2a$04$unused",
		UserType:     domain.UserTypeStudent,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func TestSubmitAnswers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("validates caller and field", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")

		_, err := f.prog.Submit(ctx, "", "field", nil)
		require.ErrorIs(t, err, ErrUnauthenticated)

		_, err = f.prog.Submit(ctx, u.ID, " ", nil)
		require.ErrorIs(t, err, ErrInvalidInput)

		_, err = f.prog.Submit(ctx, u.ID, "missing", nil)
		require.ErrorIs(t, err, ErrFieldNotFound)
	})

	t.Run("grades case insensitively and ignores unknown questions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)
		other := f.field(t, "History", 0)
		q1 := f.question(t, fl.ID, "Paris")
		q2 := f.question(t, fl.ID, "Rome")
		foreign := f.question(t, other.ID, "Paris")

		p, err := f.prog.Submit(ctx, u.ID, fl.ID, []domain.Answer{
			{QuestionID: q1.ID, Answer: "  pARis "},
			{QuestionID: q2.ID, Answer: "Milan"},
			{QuestionID: foreign.ID, Answer: "Paris"},
			{QuestionID: "ghost", Answer: "x"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, p.TotalCorrect)
		require.Equal(t, 4, p.TotalAnswered)
		require.Equal(t, 1, p.Submissions)
		require.Len(t, p.Entries, 2)
		require.True(t, p.Entries[0].IsCorrect)
		require.Equal(t, "  pARis ", p.Entries[0].Answer)
		require.False(t, p.Entries[1].IsCorrect)
	})

	t.Run("an empty batch still creates the record", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)

		p, err := f.prog.Submit(ctx, u.ID, fl.ID, nil)
		require.NoError(t, err)
		require.Zero(t, p.TotalAnswered)
		require.Empty(t, p.Entries)

		got, err := f.prog.Get(ctx, u.ID, fl.ID)
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)
	})

	t.Run("same batch twice keeps totals and appends entries", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)
		q1 := f.question(t, fl.ID, "Paris")
		q2 := f.question(t, fl.ID, "Rome")
		batch := []domain.Answer{{QuestionID: q1.ID, Answer: "paris"}, {QuestionID: q2.ID, Answer: "rome"}}

		first, err := f.prog.Submit(ctx, u.ID, fl.ID, batch)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
		second, err := f.prog.Submit(ctx, u.ID, fl.ID, batch)
		require.NoError(t, err)

		require.Equal(t, first.ID, second.ID)
		require.Equal(t, first.TotalCorrect, second.TotalCorrect)
		require.Equal(t, first.TotalAnswered, second.TotalAnswered)
		require.Equal(t, 2, second.Submissions)
		require.Len(t, second.Entries, 4)
		require.Len(t, second.Batch(1), 2)
		require.Len(t, second.Batch(2), 2)
	})

	t.Run("totals describe the latest batch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)
		q1 := f.question(t, fl.ID, "Paris")
		q2 := f.question(t, fl.ID, "Rome")

		_, err := f.prog.Submit(ctx, u.ID, fl.ID, []domain.Answer{
			{QuestionID: q1.ID, Answer: "paris"},
			{QuestionID: q2.ID, Answer: "rome"},
		})
		require.NoError(t, err)

		p, err := f.prog.Submit(ctx, u.ID, fl.ID, []domain.Answer{{QuestionID: q1.ID, Answer: "lyon"}})
		require.NoError(t, err)
		require.Equal(t, 0, p.TotalCorrect)
		require.Equal(t, 1, p.TotalAnswered)
		require.LessOrEqual(t, p.TotalCorrect, p.TotalAnswered)
		require.Len(t, p.Entries, 3)
	})

	t.Run("concurrent batches append every entry", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)
		q := f.question(t, fl.ID, "Paris")

		const n = 6
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.prog.Submit(ctx, u.ID, fl.ID, []domain.Answer{{QuestionID: q.ID, Answer: "paris"}})
			}()
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}

		p, err := f.prog.Get(ctx, u.ID, fl.ID)
		require.NoError(t, err)
		require.Len(t, p.Entries, n)
		require.Equal(t, 1, p.TotalCorrect)
		require.Equal(t, 1, p.TotalAnswered)
	})

	t.Run("progress of another field is not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		u := seedLearner(t, f, "asha@example.com")
		fl := f.field(t, "Geography", 0)

		_, err := f.prog.Get(ctx, u.ID, fl.ID)
		require.ErrorIs(t, err, ErrProgressNotFound)
	})
}
