package sqlite

import (
	"context"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

const fieldColumns = `id, name, description, audience, default_time_per_question,
	price_paise, created_by, created_at, updated_at`

type fieldsRepo struct {
	q dbtx
}

func scanField(row scanner) (domain.Field, error) {
	var (
		f                domain.Field
		audience         string
		created, updated int64
	)
	err := row.Scan(&f.ID, &f.Name, &f.Description, &audience, &f.DefaultTimePerQuestion,
		&f.PricePaise, &f.CreatedBy, &created, &updated)
	if err != nil {
		return domain.Field{}, mapNotFound(err)
	}
	f.For = domain.UserType(audience)
	f.CreatedAt = fromMillis(created)
	f.UpdatedAt = fromMillis(updated)
	return f, nil
}

func (r *fieldsRepo) Create(ctx context.Context, f domain.Field) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO fields (`+fieldColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Description, string(f.For), f.DefaultTimePerQuestion,
		f.PricePaise, f.CreatedBy, toMillis(f.CreatedAt), toMillis(f.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *fieldsRepo) Get(ctx context.Context, id string) (domain.Field, error) {
	return scanField(r.q.QueryRowContext(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id = ?`, id))
}

func (r *fieldsRepo) List(ctx context.Context) ([]domain.Field, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+fieldColumns+` FROM fields ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *fieldsRepo) Update(ctx context.Context, f domain.Field) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE fields
		SET name = ?, description = ?, audience = ?, default_time_per_question = ?,
		    price_paise = ?, updated_at = ?
		WHERE id = ?`,
		f.Name, f.Description, string(f.For), f.DefaultTimePerQuestion,
		f.PricePaise, toMillis(f.UpdatedAt), f.ID,
	)
	return expectOne(res, mapConstraint(err))
}

// Delete relies on ON DELETE CASCADE for questions and progress.
func (r *fieldsRepo) Delete(ctx context.Context, id string) error {
	return expectOne(r.q.ExecContext(ctx, `DELETE FROM fields WHERE id = ?`, id))
}
