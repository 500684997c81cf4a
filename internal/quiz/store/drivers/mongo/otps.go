package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

type otpDoc struct {
	Email      string     `bson:"_id"`
	CodeHash   string     `bson:"codeHash"`
	ExpiresAt  time.Time  `bson:"expiresAt"`
	LastSentAt time.Time  `bson:"lastSentAt"`
	Attempts   int        `bson:"attempts"`
	VerifiedAt *time.Time `bson:"verifiedAt,omitempty"`
	CreatedAt  time.Time  `bson:"createdAt"`
}

func (d otpDoc) domain() domain.OTPRecord {
	return domain.OTPRecord{
		Email:      d.Email,
		CodeHash:   d.CodeHash,
		ExpiresAt:  utc(d.ExpiresAt),
		LastSentAt: utc(d.LastSentAt),
		Attempts:   d.Attempts,
		VerifiedAt: utcPtr(d.VerifiedAt),
		CreatedAt:  utc(d.CreatedAt),
	}
}

type otpsRepo struct{ base }

// Issue filters on the cooldown. When a record exists but is too recent the
// filter misses, the upsert collides on _id and the guard is reported.
func (r *otpsRepo) Issue(ctx context.Context, rec domain.OTPRecord, cutoff time.Time) (domain.OTPRecord, error) {
	filter := bson.M{"_id": rec.Email, "lastSentAt": bson.M{"$lte": cutoff}}
	update := bson.M{
		"$set": bson.M{
			"codeHash":   rec.CodeHash,
			"expiresAt":  rec.ExpiresAt,
			"lastSentAt": rec.LastSentAt,
			"attempts":   0,
		},
		"$unset":       bson.M{"verifiedAt": ""},
		"$setOnInsert": bson.M{"createdAt": rec.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d otpDoc
	err := r.col(colOTPs).FindOneAndUpdate(r.bind(ctx), filter, update, opts).Decode(&d)
	switch {
	case err == nil:
		return d.domain(), nil
	case mongo.IsDuplicateKeyError(err):
		existing, err := r.Get(ctx, rec.Email)
		if err != nil {
			return domain.OTPRecord{}, err
		}
		return existing, store.ErrConditionFailed
	default:
		return domain.OTPRecord{}, err
	}
}

func (r *otpsRepo) Get(ctx context.Context, email string) (domain.OTPRecord, error) {
	var d otpDoc
	if err := r.col(colOTPs).FindOne(r.bind(ctx), bson.M{"_id": email}).Decode(&d); err != nil {
		return domain.OTPRecord{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *otpsRepo) RecordAttempt(ctx context.Context, email, codeHash string, maxAttempts int, verifiedAt *time.Time) (domain.OTPRecord, error) {
	filter := bson.M{"_id": email, "codeHash": codeHash, "attempts": bson.M{"$lt": maxAttempts}}
	update := bson.M{"$inc": bson.M{"attempts": 1}}
	if verifiedAt != nil {
		update["$set"] = bson.M{"verifiedAt": *verifiedAt}
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d otpDoc
	err := r.col(colOTPs).FindOneAndUpdate(r.bind(ctx), filter, update, opts).Decode(&d)
	if err == nil {
		return d.domain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.OTPRecord{}, err
	}

	n, err := r.col(colOTPs).CountDocuments(r.bind(ctx), bson.M{"_id": email})
	if err != nil {
		return domain.OTPRecord{}, err
	}
	if n == 0 {
		return domain.OTPRecord{}, store.ErrNotFound
	}
	return domain.OTPRecord{}, store.ErrConditionFailed
}

func (r *otpsRepo) Delete(ctx context.Context, email string) error {
	_, err := r.col(colOTPs).DeleteOne(r.bind(ctx), bson.M{"_id": email})
	return err
}

func (r *otpsRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.col(colOTPs).DeleteMany(r.bind(ctx), bson.M{"expiresAt": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
