package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

var errNestedTx = errors.New("mongo: nested transactions are not supported")

type txStore struct {
	parent *Store
	sess   mongo.Session
	ctx    context.Context
	// managed transactions are committed by WithTransaction.
	managed bool
	done    bool
}

func (t *txStore) Commit() error {
	if t.managed || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.CommitTransaction(t.ctx)
}

func (t *txStore) Rollback() error {
	if t.managed || t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(t.ctx)
	return t.sess.AbortTransaction(t.ctx)
}

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return t.parent.Ping(ctx) }

func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, errNestedTx }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error { return errNestedTx }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) base() base {
	b := t.parent.base()
	b.sess = t.sess
	return b
}

func (t *txStore) Users() store.Users         { return &usersRepo{t.base()} }
func (t *txStore) OTPs() store.OTPs           { return &otpsRepo{t.base()} }
func (t *txStore) Fields() store.Fields       { return &fieldsRepo{t.base()} }
func (t *txStore) Questions() store.Questions { return &questionsRepo{t.base()} }
func (t *txStore) Progress() store.Progress   { return &progressRepo{t.base()} }
func (t *txStore) Payments() store.Payments   { return &paymentsRepo{t.base()} }
