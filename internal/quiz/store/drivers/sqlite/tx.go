package sqlite

import (
	"context"
	"database/sql"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the database.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return sql.ErrTxDone }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users         { return &usersRepo{q: t.tx} }
func (t *txStore) OTPs() store.OTPs           { return &otpsRepo{q: t.tx} }
func (t *txStore) Fields() store.Fields       { return &fieldsRepo{q: t.tx} }
func (t *txStore) Questions() store.Questions { return &questionsRepo{q: t.tx} }
func (t *txStore) Progress() store.Progress   { return &progressRepo{q: t.tx} }
func (t *txStore) Payments() store.Payments   { return &paymentsRepo{q: t.tx} }
