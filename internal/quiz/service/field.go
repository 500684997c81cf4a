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

type FieldInput struct {
	Name                   string
	Description            string
	For                    string
	DefaultTimePerQuestion int
	PricePaise             int64
}

func (in FieldInput) validate() (FieldInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.For = strings.ToLower(strings.TrimSpace(in.For))

	if in.Name == "" {
		return in, invalid("Missing fields: name")
	}
	if in.For != "" && !domain.UserType(in.For).Valid() {
		return in, invalid("Invalid for: must be student or general")
	}
	if in.DefaultTimePerQuestion < 0 {
		return in, invalid("defaultTimePerQuestion must not be negative")
	}
	if in.PricePaise < 0 {
		return in, invalid("price must not be negative")
	}
	return in, nil
}

type FieldService struct {
	Store store.Store

	Now func() time.Time
}

func (s *FieldService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FieldService) Create(ctx context.Context, actorID string, in FieldInput) (domain.Field, error) {
	log := slogx.FromContext(ctx)

	in, err := in.validate()
	if err != nil {
		return domain.Field{}, err
	}

	now := s.now()
	f := domain.Field{
		ID:                     idx.New().String(),
		Name:                   in.Name,
		Description:            in.Description,
		For:                    domain.UserType(in.For),
		DefaultTimePerQuestion: in.DefaultTimePerQuestion,
		PricePaise:             in.PricePaise,
		CreatedBy:              actorID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.Store.Fields().Create(ctx, f); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Field{}, ErrFieldNameTaken
		}
		log.Error("failed to create field", slog.Any("error", err))
		return domain.Field{}, internal(err)
	}

	log.Info("field created", slog.String("field_id", f.ID), slog.String("name", f.Name))
	return f, nil
}

func (s *FieldService) Get(ctx context.Context, id string) (domain.Field, error) {
	f, err := s.Store.Fields().Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Field{}, ErrFieldNotFound
	}
	if err != nil {
		return domain.Field{}, internal(err)
	}
	return f, nil
}

func (s *FieldService) List(ctx context.Context) ([]domain.Field, error) {
	fields, err := s.Store.Fields().List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list fields", slog.Any("error", err))
		return nil, internal(err)
	}
	return fields, nil
}

// WithQuestions returns the field and its questions, newest first.
func (s *FieldService) WithQuestions(ctx context.Context, id string) (domain.Field, []domain.Question, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return domain.Field{}, nil, err
	}
	qs, err := s.Store.Questions().ListByField(ctx, id)
	if err != nil {
		return domain.Field{}, nil, internal(err)
	}
	return f, qs, nil
}

func (s *FieldService) Update(ctx context.Context, id string, in FieldInput) (domain.Field, error) {
	log := slogx.FromContext(ctx)

	in, err := in.validate()
	if err != nil {
		return domain.Field{}, err
	}

	f, err := s.Get(ctx, id)
	if err != nil {
		return domain.Field{}, err
	}
	f.Name = in.Name
	f.Description = in.Description
	f.For = domain.UserType(in.For)
	f.DefaultTimePerQuestion = in.DefaultTimePerQuestion
	f.PricePaise = in.PricePaise
	f.UpdatedAt = s.now()

	switch err := s.Store.Fields().Update(ctx, f); {
	case errors.Is(err, store.ErrNotFound):
		return domain.Field{}, ErrFieldNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return domain.Field{}, ErrFieldNameTaken
	case err != nil:
		log.Error("failed to update field", slog.String("field_id", id), slog.Any("error", err))
		return domain.Field{}, internal(err)
	}
	return f, nil
}

// Delete removes the field with its questions and progress.
func (s *FieldService) Delete(ctx context.Context, id string) error {
	err := s.Store.Fields().Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrFieldNotFound
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to delete field", slog.String("field_id", id), slog.Any("error", err))
		return internal(err)
	}
	slogx.FromContext(ctx).Info("field deleted", slog.String("field_id", id))
	return nil
}
