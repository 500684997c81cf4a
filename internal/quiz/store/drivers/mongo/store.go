// Package mongo implements store.Store on MongoDB. Multi document writes
// run in sessions, so the server must be a replica set member.
package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

const (
	colUsers     = "users"
	colOTPs      = "otps"
	colFields    = "fields"
	colQuestions = "questions"
	colProgress  = "progress"
	colPayments  = "payments"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri and pings the primary before returning.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Database exposes the handle for diagnostics and tests.
func (s *Store) Database() *mongo.Database { return s.db }

func (s *Store) Close() error { return s.client.Disconnect(context.Background()) }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}
	return &txStore{parent: s, sess: sess, ctx: ctx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(&txStore{parent: s, sess: sess, ctx: sc, managed: true})
	})
	return err
}

func (s *Store) base() base { return base{db: s.db, client: s.client} }

func (s *Store) Users() store.Users         { return &usersRepo{s.base()} }
func (s *Store) OTPs() store.OTPs           { return &otpsRepo{s.base()} }
func (s *Store) Fields() store.Fields       { return &fieldsRepo{s.base()} }
func (s *Store) Questions() store.Questions { return &questionsRepo{s.base()} }
func (s *Store) Progress() store.Progress   { return &progressRepo{s.base()} }
func (s *Store) Payments() store.Payments   { return &paymentsRepo{s.base()} }

// base is embedded by every repository. sess is set when the repository
// was handed out by a transaction.
type base struct {
	db     *mongo.Database
	client *mongo.Client
	sess   mongo.Session
}

func (b base) col(name string) *mongo.Collection { return b.db.Collection(name) }

// bind attaches the transaction session, if any, to ctx.
func (b base) bind(ctx context.Context) context.Context {
	if b.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, b.sess)
}

// atomically runs fn in a transaction unless the repository already is in one.
func (b base) atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	if b.sess != nil {
		return fn(b.bind(ctx))
	}

	sess, err := b.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// uniqueIndexes maps index names to the attribute reported in
// *store.DuplicateError.
var uniqueIndexes = map[string]string{
	"users_email_uq":         "email",
	"users_mobile_uq":        "mobile",
	"fields_name_uq":         "name",
	"payments_order_uq":      "order_id",
	"payments_utr_uq":        "utr",
	"progress_user_field_uq": "user_field",
}

func mapDuplicate(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for index, field := range uniqueIndexes {
		if strings.Contains(msg, index) {
			return &store.DuplicateError{Field: field}
		}
	}
	if strings.Contains(msg, "_id_") {
		return &store.DuplicateError{Field: "id"}
	}
	return &store.DuplicateError{Field: "unknown"}
}

func matchedOne(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return mapDuplicate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func utc(t time.Time) time.Time { return t.UTC() }

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
