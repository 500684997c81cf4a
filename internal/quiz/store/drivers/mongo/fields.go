package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

type fieldDoc struct {
	ID                     string    `bson:"_id"`
	Name                   string    `bson:"name"`
	Description            string    `bson:"description"`
	For                    string    `bson:"for"`
	DefaultTimePerQuestion int       `bson:"defaultTimePerQuestion"`
	PricePaise             int64     `bson:"pricePaise"`
	CreatedBy              string    `bson:"createdBy"`
	CreatedAt              time.Time `bson:"createdAt"`
	UpdatedAt              time.Time `bson:"updatedAt"`
}

func toFieldDoc(f domain.Field) fieldDoc {
	return fieldDoc{
		ID:                     f.ID,
		Name:                   f.Name,
		Description:            f.Description,
		For:                    string(f.For),
		DefaultTimePerQuestion: f.DefaultTimePerQuestion,
		PricePaise:             f.PricePaise,
		CreatedBy:              f.CreatedBy,
		CreatedAt:              f.CreatedAt,
		UpdatedAt:              f.UpdatedAt,
	}
}

func (d fieldDoc) domain() domain.Field {
	return domain.Field{
		ID:                     d.ID,
		Name:                   d.Name,
		Description:            d.Description,
		For:                    domain.UserType(d.For),
		DefaultTimePerQuestion: d.DefaultTimePerQuestion,
		PricePaise:             d.PricePaise,
		CreatedBy:              d.CreatedBy,
		CreatedAt:              utc(d.CreatedAt),
		UpdatedAt:              utc(d.UpdatedAt),
	}
}

type fieldsRepo struct{ base }

func (r *fieldsRepo) Create(ctx context.Context, f domain.Field) error {
	_, err := r.col(colFields).InsertOne(r.bind(ctx), toFieldDoc(f))
	return mapDuplicate(err)
}

func (r *fieldsRepo) Get(ctx context.Context, id string) (domain.Field, error) {
	var d fieldDoc
	if err := r.col(colFields).FindOne(r.bind(ctx), bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Field{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *fieldsRepo) List(ctx context.Context) ([]domain.Field, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.col(colFields).Find(r.bind(ctx), bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []fieldDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Field, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.domain())
	}
	return out, nil
}

func (r *fieldsRepo) Update(ctx context.Context, f domain.Field) error {
	return matchedOne(r.col(colFields).UpdateByID(r.bind(ctx), f.ID, bson.M{"$set": bson.M{
		"name":                   f.Name,
		"description":            f.Description,
		"for":                    string(f.For),
		"defaultTimePerQuestion": f.DefaultTimePerQuestion,
		"pricePaise":             f.PricePaise,
		"updatedAt":              f.UpdatedAt,
	}}))
}

// Delete removes the field, its questions and its progress records together.
func (r *fieldsRepo) Delete(ctx context.Context, id string) error {
	return r.atomically(ctx, func(ctx context.Context) error {
		res, err := r.col(colFields).DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return store.ErrNotFound
		}
		if _, err := r.col(colQuestions).DeleteMany(ctx, bson.M{"fieldId": id}); err != nil {
			return err
		}
		_, err = r.col(colProgress).DeleteMany(ctx, bson.M{"fieldId": id})
		return err
	})
}
