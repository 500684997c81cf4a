package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplyMigrations creates the collections' indexes. CreateMany is
// idempotent for identical specs, so it runs on every boot.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	present := func(field string) any {
		return bson.M{field: bson.M{"$exists": true}}
	}

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("users_email_uq").SetUnique(true).SetPartialFilterExpression(present("email")),
			},
			{
				Keys:    bson.D{{Key: "mobile", Value: 1}},
				Options: options.Index().SetName("users_mobile_uq").SetUnique(true).SetPartialFilterExpression(present("mobile")),
			},
		},
		colOTPs: {
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetName("otps_expires_ttl").SetExpireAfterSeconds(0),
			},
		},
		colFields: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName("fields_name_uq").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("fields_created_idx"),
			},
		},
		colQuestions: {
			{
				Keys:    bson.D{{Key: "fieldId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("questions_field_idx"),
			},
		},
		colProgress: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "fieldId", Value: 1}},
				Options: options.Index().SetName("progress_user_field_uq").SetUnique(true),
			},
		},
		colPayments: {
			{
				Keys:    bson.D{{Key: "orderId", Value: 1}},
				Options: options.Index().SetName("payments_order_uq").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "utr", Value: 1}},
				Options: options.Index().SetName("payments_utr_uq").SetUnique(true).SetPartialFilterExpression(present("utr")),
			},
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "fieldId", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("payments_user_field_idx"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("payments_status_idx"),
			},
		},
	}

	for col, models := range specs {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
