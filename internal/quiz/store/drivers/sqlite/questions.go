package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

const questionColumns = `id, field_id, type, text, options, correct_answer, solution,
	created_by, created_at, updated_at`

type questionsRepo struct {
	q dbtx
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q                domain.Question
		typ, options     string
		created, updated int64
	)
	err := row.Scan(&q.ID, &q.FieldID, &typ, &q.Text, &options, &q.CorrectAnswer, &q.Solution,
		&q.CreatedBy, &created, &updated)
	if err != nil {
		return domain.Question{}, mapNotFound(err)
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return domain.Question{}, err
	}
	q.Type = domain.QuestionType(typ)
	q.CreatedAt = fromMillis(created)
	q.UpdatedAt = fromMillis(updated)
	return q, nil
}

func encodeOptions(opts []domain.Option) (string, error) {
	if opts == nil {
		opts = []domain.Option{}
	}
	b, err := json.Marshal(opts)
	return string(b), err
}

func (r *questionsRepo) Create(ctx context.Context, q domain.Question) error {
	options, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}
	_, err = r.q.ExecContext(ctx, `
		INSERT INTO questions (`+questionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, q.FieldID, string(q.Type), q.Text, options, q.CorrectAnswer, q.Solution,
		q.CreatedBy, toMillis(q.CreatedAt), toMillis(q.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *questionsRepo) Get(ctx context.Context, id string) (domain.Question, error) {
	return scanQuestion(r.q.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
}

func (r *questionsRepo) ListByField(ctx context.Context, fieldID string) ([]domain.Question, error) {
	return r.list(ctx, `SELECT `+questionColumns+` FROM questions
		WHERE field_id = ? ORDER BY created_at DESC, id DESC`, fieldID)
}

func (r *questionsRepo) GetMany(ctx context.Context, fieldID string, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, fieldID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	qs, err := r.list(ctx, `SELECT `+questionColumns+` FROM questions
		WHERE field_id = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, q := range qs {
		out[q.ID] = q
	}
	return out, nil
}

func (r *questionsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *questionsRepo) Update(ctx context.Context, q domain.Question) error {
	options, err := encodeOptions(q.Options)
	if err != nil {
		return err
	}
	return expectOne(r.q.ExecContext(ctx, `
		UPDATE questions
		SET type = ?, text = ?, options = ?, correct_answer = ?, solution = ?, updated_at = ?
		WHERE id = ?`,
		string(q.Type), q.Text, options, q.CorrectAnswer, q.Solution, toMillis(q.UpdatedAt), q.ID,
	))
}

func (r *questionsRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id))
}
