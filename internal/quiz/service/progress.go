package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/idx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/slogx"
)

// ProgressService grades answer batches and keeps per field progress.
type ProgressService struct {
	Store store.Store

	Now func() time.Time
}

func (s *ProgressService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit grades answers against the field's questions in one lookup.
// Totals are overwritten with this batch's counts while graded entries are
// appended; each entry carries its batch number. Two concurrent batches for
// the same user and field both append, and the later write wins the totals.
func (s *ProgressService) Submit(ctx context.Context, userID, fieldID string, answers []domain.Answer) (domain.Progress, error) {
	log := slogx.FromContext(ctx)
	now := s.now()

	// 1. Validate input
	if userID == "" {
		return domain.Progress{}, ErrUnauthenticated
	}
	fieldID = strings.TrimSpace(fieldID)
	if fieldID == "" {
		return domain.Progress{}, invalid("Missing fields: fieldId")
	}
	if answers == nil {
		answers = []domain.Answer{}
	}

	if _, err := s.Store.Fields().Get(ctx, fieldID); errors.Is(err, store.ErrNotFound) {
		return domain.Progress{}, ErrFieldNotFound
	} else if err != nil {
		log.Error("failed to load field", slog.String("field_id", fieldID), slog.Any("error", err))
		return domain.Progress{}, internal(err)
	}

	// 2. Load every referenced question at once
	ids := make([]string, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		if _, dup := seen[a.QuestionID]; dup || a.QuestionID == "" {
			continue
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}
	known, err := s.Store.Questions().GetMany(ctx, fieldID, ids)
	if err != nil {
		log.Error("failed to load questions", slog.String("field_id", fieldID), slog.Any("error", err))
		return domain.Progress{}, internal(err)
	}

	// 3. Load or start the progress record
	p, err := s.Store.Progress().Get(ctx, userID, fieldID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		p = domain.Progress{ID: idx.New().String(), UserID: userID, FieldID: fieldID, CreatedAt: now}
	case err != nil:
		log.Error("failed to load progress", slog.Any("error", err))
		return domain.Progress{}, internal(err)
	}

	// 4. Grade and apply
	entries, correct, answered := domain.Grade(answers, known, p.Submissions+1, now)
	p.Apply(entries, correct, answered, now)

	// 5. Persist
	if err := s.Store.Progress().SaveBatch(ctx, p, entries); err != nil {
		log.Error("failed to save progress", slog.String("field_id", fieldID), slog.Any("error", err))
		return domain.Progress{}, internal(err)
	}

	log.Info("answers graded",
		slog.String("field_id", fieldID),
		slog.Int("batch", p.Submissions),
		slog.Int("total_correct", correct),
		slog.Int("total_answered", answered),
	)

	// 6. Return the stored document, which includes concurrent appends
	stored, err := s.Store.Progress().Get(ctx, userID, fieldID)
	if err != nil {
		log.Error("failed to reload progress", slog.Any("error", err))
		return p, nil
	}
	return stored, nil
}

func (s *ProgressService) Get(ctx context.Context, userID, fieldID string) (domain.Progress, error) {
	p, err := s.Store.Progress().Get(ctx, userID, fieldID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Progress{}, ErrProgressNotFound
	}
	if err != nil {
		return domain.Progress{}, internal(err)
	}
	return p, nil
}
