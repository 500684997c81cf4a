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

type QuestionInput struct {
	Type          string
	Text          string
	Options       []string
	CorrectAnswer string
	Solution      string
}

func (in QuestionInput) validate() (QuestionInput, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = string(domain.QuestionMCQ)
	}
	in.Text = strings.TrimSpace(in.Text)
	in.CorrectAnswer = strings.TrimSpace(in.CorrectAnswer)
	in.Solution = strings.TrimSpace(in.Solution)

	opts := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	in.Options = opts

	if !domain.QuestionType(in.Type).Valid() {
		return in, invalid("Invalid type: must be mcq or descriptive")
	}
	if in.Text == "" {
		return in, invalid("Missing fields: text")
	}
	if in.Type == string(domain.QuestionMCQ) {
		if len(in.Options) < 2 {
			return in, invalid("MCQ questions need at least 2 options")
		}
		if in.CorrectAnswer == "" {
			return in, invalid("Missing fields: correctAnswer")
		}
	}
	return in, nil
}

func (in QuestionInput) options() []domain.Option {
	out := make([]domain.Option, 0, len(in.Options))
	for _, o := range in.Options {
		out = append(out, domain.Option{Text: o})
	}
	return out
}

type QuestionService struct {
	Store store.Store

	Now func() time.Time
}

func (s *QuestionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *QuestionService) Create(ctx context.Context, actorID, fieldID string, in QuestionInput) (domain.Question, error) {
	log := slogx.FromContext(ctx)

	in, err := in.validate()
	if err != nil {
		return domain.Question{}, err
	}

	if _, err := s.Store.Fields().Get(ctx, fieldID); errors.Is(err, store.ErrNotFound) {
		return domain.Question{}, ErrFieldNotFound
	} else if err != nil {
		return domain.Question{}, internal(err)
	}

	now := s.now()
	q := domain.Question{
		ID:            idx.New().String(),
		FieldID:       fieldID,
		Type:          domain.QuestionType(in.Type),
		Text:          in.Text,
		Options:       in.options(),
		CorrectAnswer: in.CorrectAnswer,
		Solution:      in.Solution,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Questions().Create(ctx, q); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Question{}, ErrFieldNotFound
		}
		log.Error("failed to create question", slog.String("field_id", fieldID), slog.Any("error", err))
		return domain.Question{}, internal(err)
	}

	log.Info("question created", slog.String("question_id", q.ID), slog.String("field_id", fieldID))
	return q, nil
}

func (s *QuestionService) Get(ctx context.Context, id string) (domain.Question, error) {
	q, err := s.Store.Questions().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Question{}, ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, internal(err)
	}
	return q, nil
}

// List returns the questions of a field, which must exist.
func (s *QuestionService) List(ctx context.Context, fieldID string) ([]domain.Question, error) {
	if strings.TrimSpace(fieldID) == "" {
		return nil, invalid("Missing fields: fieldId")
	}
	if _, err := s.Store.Fields().Get(ctx, fieldID); errors.Is(err, store.ErrNotFound) {
		return nil, ErrFieldNotFound
	} else if err != nil {
		return nil, internal(err)
	}

	qs, err := s.Store.Questions().ListByField(ctx, fieldID)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list questions", slog.String("field_id", fieldID), slog.Any("error", err))
		return nil, internal(err)
	}
	return qs, nil
}

func (s *QuestionService) Update(ctx context.Context, id string, in QuestionInput) (domain.Question, error) {
	in, err := in.validate()
	if err != nil {
		return domain.Question{}, err
	}

	q, err := s.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	q.Type = domain.QuestionType(in.Type)
	q.Text = in.Text
	q.Options = in.options()
	q.CorrectAnswer = in.CorrectAnswer
	q.Solution = in.Solution
	q.UpdatedAt = s.now()

	if err := s.Store.Questions().Update(ctx, q); errors.Is(err, store.ErrNotFound) {
		return domain.Question{}, ErrQuestionNotFound
	} else if err != nil {
		slogx.FromContext(ctx).Error("failed to update question", slog.String("question_id", id), slog.Any("error", err))
		return domain.Question{}, internal(err)
	}
	return q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id string) error {
	err := s.Store.Questions().Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrQuestionNotFound
	}
	if err != nil {
		return internal(err)
	}
	return nil
}
