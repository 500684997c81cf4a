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

type paymentDoc struct {
	ID            string     `bson:"_id"`
	OrderID       string     `bson:"orderId"`
	UserID        string     `bson:"userId"`
	FieldID       string     `bson:"fieldId"`
	Method        string     `bson:"method"`
	AmountPaise   int64      `bson:"amountPaise"`
	UTR           string     `bson:"utr,omitempty"`
	ScreenshotKey string     `bson:"screenshotKey"`
	Status        string     `bson:"status"`
	ReviewedBy    string     `bson:"reviewedBy"`
	ReviewedAt    *time.Time `bson:"reviewedAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func (d paymentDoc) domain() domain.Payment {
	return domain.Payment{
		ID:            d.ID,
		OrderID:       d.OrderID,
		UserID:        d.UserID,
		FieldID:       d.FieldID,
		Method:        d.Method,
		AmountPaise:   d.AmountPaise,
		UTR:           d.UTR,
		ScreenshotKey: d.ScreenshotKey,
		Status:        domain.PaymentStatus(d.Status),
		ReviewedBy:    d.ReviewedBy,
		ReviewedAt:    utcPtr(d.ReviewedAt),
		CreatedAt:     utc(d.CreatedAt),
		UpdatedAt:     utc(d.UpdatedAt),
	}
}

type paymentsRepo struct{ base }

func (r *paymentsRepo) Create(ctx context.Context, p domain.Payment) error {
	_, err := r.col(colPayments).InsertOne(r.bind(ctx), paymentDoc{
		ID:            p.ID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		FieldID:       p.FieldID,
		Method:        p.Method,
		AmountPaise:   p.AmountPaise,
		UTR:           p.UTR,
		ScreenshotKey: p.ScreenshotKey,
		Status:        string(p.Status),
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	})
	return mapDuplicate(err)
}

func (r *paymentsRepo) findOne(ctx context.Context, filter bson.M) (domain.Payment, error) {
	var d paymentDoc
	if err := r.col(colPayments).FindOne(r.bind(ctx), filter).Decode(&d); err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *paymentsRepo) Get(ctx context.Context, id string) (domain.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *paymentsRepo) GetByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	return r.findOne(ctx, bson.M{"orderId": orderID})
}

func (r *paymentsRepo) List(ctx context.Context, f store.PaymentFilter) ([]domain.Payment, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.FieldID != "" {
		filter["fieldId"] = f.FieldID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := r.col(colPayments).Find(r.bind(ctx), filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Payment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.domain())
	}
	return out, nil
}

func (r *paymentsRepo) AttachProof(ctx context.Context, orderID, userID, utr, screenshotKey string, at time.Time) (domain.Payment, error) {
	filter := bson.M{
		"orderId": orderID,
		"userId":  userID,
		"status":  string(domain.PaymentPending),
		"utr":     bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"utr": utr, "screenshotKey": screenshotKey, "updatedAt": at}}
	return r.guardedUpdate(ctx, filter, update, bson.M{"orderId": orderID, "userId": userID})
}

func (r *paymentsRepo) Review(ctx context.Context, id string, status domain.PaymentStatus, reviewer string, at time.Time) (domain.Payment, error) {
	filter := bson.M{"_id": id, "status": string(domain.PaymentPending)}
	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"reviewedBy": reviewer,
		"reviewedAt": at,
		"updatedAt":  at,
	}}
	return r.guardedUpdate(ctx, filter, update, bson.M{"_id": id})
}

// guardedUpdate applies update when filter matches. On a miss, exists tells
// ErrNotFound from ErrConditionFailed.
func (r *paymentsRepo) guardedUpdate(ctx context.Context, filter, update, exists bson.M) (domain.Payment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d paymentDoc
	err := r.col(colPayments).FindOneAndUpdate(r.bind(ctx), filter, update, opts).Decode(&d)
	if err == nil {
		return d.domain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Payment{}, mapDuplicate(err)
	}

	n, err := r.col(colPayments).CountDocuments(r.bind(ctx), exists)
	if err != nil {
		return domain.Payment{}, err
	}
	if n == 0 {
		return domain.Payment{}, store.ErrNotFound
	}
	return domain.Payment{}, store.ErrConditionFailed
}

func (r *paymentsRepo) HasSuccessful(ctx context.Context, userID, fieldID string) (bool, error) {
	n, err := r.col(colPayments).CountDocuments(r.bind(ctx),
		bson.M{"userId": userID, "fieldId": fieldID, "status": string(domain.PaymentSuccess)},
		options.Count().SetLimit(1))
	return n > 0, err
}
