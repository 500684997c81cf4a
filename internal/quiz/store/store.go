package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConditionFailed reports that a conditional write matched no row
	// because its guard (cooldown, attempt budget, status) did not hold.
	ErrConditionFailed = errors.New("store: condition failed")
)

// DuplicateError names the unique attribute a write collided on.
type DuplicateError struct {
	Field string // "email", "mobile", "name", "order_id", "utr"
}

func (e *DuplicateError) Error() string { return fmt.Sprintf("store: duplicate %s", e.Field) }

func (e *DuplicateError) Is(target error) bool { return target == ErrAlreadyExists }

// Store is the root data access interface implemented by the sqlite and
// mongo drivers. Sub repositories are obtained through methods so that a Tx
// hands out repositories bound to the transaction.
type Store interface {
	Users() Users
	OTPs() OTPs
	Fields() Fields
	Questions() Questions
	Progress() Progress
	Payments() Payments

	ApplyMigrations() error

	// Tx starts a transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	// Inside fn only the repositories of tx may be used.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// Create fails with *DuplicateError on email or mobile.
	Create(ctx context.Context, u domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByMobile(ctx context.Context, mobile string) (domain.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetDisabled(ctx context.Context, id string, disabled bool, at time.Time) error
}

type OTPs interface {
	// Issue upserts rec keyed by email, but only when no record exists or
	// the existing one was last sent at or before cutoff. When the guard
	// fails it returns ErrConditionFailed together with the existing record.
	// The check and the write are one atomic operation.
	Issue(ctx context.Context, rec domain.OTPRecord, cutoff time.Time) (domain.OTPRecord, error)

	Get(ctx context.Context, email string) (domain.OTPRecord, error)

	// RecordAttempt increments attempts when the record still carries
	// codeHash and attempts < maxAttempts, setting verified_at when
	// verifiedAt is non-nil. Otherwise ErrConditionFailed (or ErrNotFound).
	RecordAttempt(ctx context.Context, email, codeHash string, maxAttempts int, verifiedAt *time.Time) (domain.OTPRecord, error)

	Delete(ctx context.Context, email string) error

	// DeleteExpired removes records that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type Fields interface {
	// Create fails with *DuplicateError{Field: "name"}.
	Create(ctx context.Context, f domain.Field) error
	Get(ctx context.Context, id string) (domain.Field, error)
	// List returns fields newest first.
	List(ctx context.Context) ([]domain.Field, error)
	Update(ctx context.Context, f domain.Field) error
	// Delete removes the field with its questions and progress.
	Delete(ctx context.Context, id string) error
}

type Questions interface {
	Create(ctx context.Context, q domain.Question) error
	Get(ctx context.Context, id string) (domain.Question, error)
	// ListByField returns questions newest first.
	ListByField(ctx context.Context, fieldID string) ([]domain.Question, error)
	// GetMany loads the questions of fieldID among ids in one round trip.
	// Unknown ids and ids of other fields are absent from the result.
	GetMany(ctx context.Context, fieldID string, ids []string) (map[string]domain.Question, error)
	Update(ctx context.Context, q domain.Question) error
	Delete(ctx context.Context, id string) error
}

type Progress interface {
	Get(ctx context.Context, userID, fieldID string) (domain.Progress, error)

	// SaveBatch upserts the (user, field) record with p's totals and
	// submission counter and appends entries. Concurrent batches both
	// append; totals are last write wins.
	SaveBatch(ctx context.Context, p domain.Progress, entries []domain.AnswerEntry) error
}

// PaymentFilter narrows an admin listing. Zero values match everything.
type PaymentFilter struct {
	Status  domain.PaymentStatus
	UserID  string
	FieldID string
	Limit   int
}

type Payments interface {
	// Create fails with *DuplicateError{Field: "order_id"}.
	Create(ctx context.Context, p domain.Payment) error
	Get(ctx context.Context, id string) (domain.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (domain.Payment, error)
	// List returns payments newest first.
	List(ctx context.Context, f PaymentFilter) ([]domain.Payment, error)

	// AttachProof sets utr and screenshot key on a pending order owned by
	// userID that carries no proof yet. ErrConditionFailed when the order is
	// no longer pending or already has a UTR, *DuplicateError{Field: "utr"}
	// when the UTR was already used.
	AttachProof(ctx context.Context, orderID, userID, utr, screenshotKey string, at time.Time) (domain.Payment, error)

	// Review moves a pending payment to status. ErrConditionFailed when it
	// is not pending.
	Review(ctx context.Context, id string, status domain.PaymentStatus, reviewer string, at time.Time) (domain.Payment, error)

	// HasSuccessful reports whether userID holds a successful payment for fieldID.
	HasSuccessful(ctx context.Context, userID, fieldID string) (bool, error)
}
