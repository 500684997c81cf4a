package sqlite

import (
	"context"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

type progressRepo struct {
	q dbtx
}

func (r *progressRepo) Get(ctx context.Context, userID, fieldID string) (domain.Progress, error) {
	var (
		p                domain.Progress
		created, updated int64
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, field_id, total_correct, total_answered, submissions, created_at, updated_at
		FROM progress WHERE user_id = ? AND field_id = ?`, userID, fieldID,
	).Scan(&p.ID, &p.UserID, &p.FieldID, &p.TotalCorrect, &p.TotalAnswered, &p.Submissions, &created, &updated)
	if err != nil {
		return domain.Progress{}, mapNotFound(err)
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)

	rows, err := r.q.QueryContext(ctx, `
		SELECT question_id, answer, is_correct, batch, answered_at
		FROM progress_entries WHERE progress_id = ? ORDER BY seq`, p.ID)
	if err != nil {
		return domain.Progress{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e  domain.AnswerEntry
			at int64
		)
		if err := rows.Scan(&e.QuestionID, &e.Answer, &e.IsCorrect, &e.Batch, &at); err != nil {
			return domain.Progress{}, err
		}
		e.AnsweredAt = fromMillis(at)
		p.Entries = append(p.Entries, e)
	}
	return p, rows.Err()
}

func (r *progressRepo) SaveBatch(ctx context.Context, p domain.Progress, entries []domain.AnswerEntry) error {
	return atomically(ctx, r.q, func(q dbtx) error {
		// 1. Upsert the aggregate; the stored id wins on conflict
		var id string
		err := q.QueryRowContext(ctx, `
			INSERT INTO progress (id, user_id, field_id, total_correct, total_answered, submissions, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, field_id) DO UPDATE SET
				total_correct  = excluded.total_correct,
				total_answered = excluded.total_answered,
				submissions    = excluded.submissions,
				updated_at     = excluded.updated_at
			RETURNING id`,
			p.ID, p.UserID, p.FieldID, p.TotalCorrect, p.TotalAnswered, p.Submissions,
			toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
		).Scan(&id)
		if err != nil {
			return mapConstraint(err)
		}

		// 2. Append this batch
		for _, e := range entries {
			_, err := q.ExecContext(ctx, `
				INSERT INTO progress_entries (progress_id, question_id, answer, is_correct, batch, answered_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				id, e.QuestionID, e.Answer, e.IsCorrect, e.Batch, toMillis(e.AnsweredAt),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
