package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

type questionDoc struct {
	ID            string          `bson:"_id"`
	FieldID       string          `bson:"fieldId"`
	Type          string          `bson:"type"`
	Text          string          `bson:"text"`
	Options       []domain.Option `bson:"options"`
	CorrectAnswer string          `bson:"correctAnswer"`
	Solution      string          `bson:"solution"`
	CreatedBy     string          `bson:"createdBy"`
	CreatedAt     time.Time       `bson:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt"`
}

func (d questionDoc) domain() domain.Question {
	return domain.Question{
		ID:            d.ID,
		FieldID:       d.FieldID,
		Type:          domain.QuestionType(d.Type),
		Text:          d.Text,
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		Solution:      d.Solution,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     utc(d.CreatedAt),
		UpdatedAt:     utc(d.UpdatedAt),
	}
}

type questionsRepo struct{ base }

// Create checks the parent field inside the same transaction as the insert.
func (r *questionsRepo) Create(ctx context.Context, q domain.Question) error {
	choices := q.Options
	if choices == nil {
		choices = []domain.Option{}
	}
	return r.atomically(ctx, func(ctx context.Context) error {
		n, err := r.col(colFields).CountDocuments(ctx, bson.M{"_id": q.FieldID})
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		_, err = r.col(colQuestions).InsertOne(ctx, questionDoc{
			ID:            q.ID,
			FieldID:       q.FieldID,
			Type:          string(q.Type),
			Text:          q.Text,
			Options:       choices,
			CorrectAnswer: q.CorrectAnswer,
			Solution:      q.Solution,
			CreatedBy:     q.CreatedBy,
			CreatedAt:     q.CreatedAt,
			UpdatedAt:     q.UpdatedAt,
		})
		return mapDuplicate(err)
	})
}

func (r *questionsRepo) Get(ctx context.Context, id string) (domain.Question, error) {
	var d questionDoc
	if err := r.col(colQuestions).FindOne(r.bind(ctx), bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Question{}, mapNotFound(err)
	}
	return d.domain(), nil
}

func (r *questionsRepo) ListByField(ctx context.Context, fieldID string) ([]domain.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"fieldId": fieldID}, opts)
}

func (r *questionsRepo) GetMany(ctx context.Context, fieldID string, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	qs, err := r.find(ctx, bson.M{"fieldId": fieldID, "_id": bson.M{"$in": ids}}, nil)
	if err != nil {
		return nil, err
	}
	for _, q := range qs {
		out[q.ID] = q
	}
	return out, nil
}

func (r *questionsRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Question, error) {
	cur, err := r.col(colQuestions).Find(r.bind(ctx), filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []questionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.domain())
	}
	return out, nil
}

func (r *questionsRepo) Update(ctx context.Context, q domain.Question) error {
	choices := q.Options
	if choices == nil {
		choices = []domain.Option{}
	}
	return matchedOne(r.col(colQuestions).UpdateByID(r.bind(ctx), q.ID, bson.M{"$set": bson.M{
		"type":          string(q.Type),
		"text":          q.Text,
		"options":       choices,
		"correctAnswer": q.CorrectAnswer,
		"solution":      q.Solution,
		"updatedAt":     q.UpdatedAt,
	}}))
}

func (r *questionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col(colQuestions).DeleteOne(r.bind(ctx), bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
