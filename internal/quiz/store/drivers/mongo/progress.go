package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

type entryDoc struct {
	QuestionID string    `bson:"questionId"`
	Answer     string    `bson:"answer"`
	IsCorrect  bool      `bson:"isCorrect"`
	Batch      int       `bson:"batch"`
	AnsweredAt time.Time `bson:"answeredAt"`
}

type progressDoc struct {
	ID            string     `bson:"_id"`
	UserID        string     `bson:"userId"`
	FieldID       string     `bson:"fieldId"`
	Entries       []entryDoc `bson:"entries"`
	TotalCorrect  int        `bson:"totalCorrect"`
	TotalAnswered int        `bson:"totalAnswered"`
	Submissions   int        `bson:"submissions"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func (d progressDoc) domain() domain.Progress {
	p := domain.Progress{
		ID:            d.ID,
		UserID:        d.UserID,
		FieldID:       d.FieldID,
		TotalCorrect:  d.TotalCorrect,
		TotalAnswered: d.TotalAnswered,
		Submissions:   d.Submissions,
		CreatedAt:     utc(d.CreatedAt),
		UpdatedAt:     utc(d.UpdatedAt),
	}
	for _, e := range d.Entries {
		p.Entries = append(p.Entries, domain.AnswerEntry{
			QuestionID: e.QuestionID,
			Answer:     e.Answer,
			IsCorrect:  e.IsCorrect,
			Batch:      e.Batch,
			AnsweredAt: utc(e.AnsweredAt),
		})
	}
	return p
}

type progressRepo struct{ base }

func (r *progressRepo) Get(ctx context.Context, userID, fieldID string) (domain.Progress, error) {
	var d progressDoc
	err := r.col(colProgress).FindOne(r.bind(ctx), bson.M{"userId": userID, "fieldId": fieldID}).Decode(&d)
	if err != nil {
		return domain.Progress{}, mapNotFound(err)
	}
	return d.domain(), nil
}

// SaveBatch is a single document upsert. Two first submissions racing on
// the unique (userId, fieldId) index leave one loser, which is retried as
// an update.
func (r *progressRepo) SaveBatch(ctx context.Context, p domain.Progress, entries []domain.AnswerEntry) error {
	docs := make([]entryDoc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entryDoc{
			QuestionID: e.QuestionID,
			Answer:     e.Answer,
			IsCorrect:  e.IsCorrect,
			Batch:      e.Batch,
			AnsweredAt: e.AnsweredAt,
		})
	}

	filter := bson.M{"userId": p.UserID, "fieldId": p.FieldID}
	update := bson.M{
		"$set": bson.M{
			"totalCorrect":  p.TotalCorrect,
			"totalAnswered": p.TotalAnswered,
			"submissions":   p.Submissions,
			"updatedAt":     p.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": p.ID, "createdAt": p.CreatedAt},
		"$push":        bson.M{"entries": bson.M{"$each": docs}},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.col(colProgress).UpdateOne(r.bind(ctx), filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.col(colProgress).UpdateOne(r.bind(ctx), filter, update, opts)
	}
	return mapDuplicate(err)
}
