package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

const paymentColumns = `id, order_id, user_id, field_id, method, amount_paise, utr, screenshot_key,
	status, reviewed_by, reviewed_at, created_at, updated_at`

type paymentsRepo struct {
	q dbtx
}

func scanPayment(row scanner) (domain.Payment, error) {
	var (
		p                domain.Payment
		utr              sql.NullString
		status           string
		reviewedAt       sql.NullInt64
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.FieldID, &p.Method, &p.AmountPaise, &utr,
		&p.ScreenshotKey, &status, &p.ReviewedBy, &reviewedAt, &created, &updated)
	if err != nil {
		return domain.Payment{}, mapNotFound(err)
	}
	p.UTR = utr.String
	p.Status = domain.PaymentStatus(status)
	p.ReviewedAt = fromNullMillis(reviewedAt)
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}

func (r *paymentsRepo) Create(ctx context.Context, p domain.Payment) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrderID, p.UserID, p.FieldID, p.Method, p.AmountPaise, toNullString(p.UTR),
		p.ScreenshotKey, string(p.Status), p.ReviewedBy, toNullMillis(p.ReviewedAt),
		toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *paymentsRepo) Get(ctx context.Context, id string) (domain.Payment, error) {
	return scanPayment(r.q.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
}

func (r *paymentsRepo) GetByOrderID(ctx context.Context, orderID string) (domain.Payment, error) {
	return scanPayment(r.q.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = ?`, orderID))
}

func (r *paymentsRepo) List(ctx context.Context, f store.PaymentFilter) ([]domain.Payment, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.FieldID != "" {
		where = append(where, "field_id = ?")
		args = append(args, f.FieldID)
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentsRepo) AttachProof(ctx context.Context, orderID, userID, utr, screenshotKey string, at time.Time) (domain.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx, `
		UPDATE payments
		SET utr = ?, screenshot_key = ?, updated_at = ?
		WHERE order_id = ? AND user_id = ? AND status = 'pending' AND utr IS NULL
		RETURNING `+paymentColumns,
		utr, screenshotKey, toMillis(at), orderID, userID,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Payment{}, mapConstraint(err)
	}
	return domain.Payment{}, r.missOrStale(ctx, `SELECT 1 FROM payments WHERE order_id = ? AND user_id = ?`, orderID, userID)
}

func (r *paymentsRepo) Review(ctx context.Context, id string, status domain.PaymentStatus, reviewer string, at time.Time) (domain.Payment, error) {
	p, err := scanPayment(r.q.QueryRowContext(ctx, `
		UPDATE payments
		SET status = ?, reviewed_by = ?, reviewed_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'
		RETURNING `+paymentColumns,
		string(status), reviewer, toMillis(at), toMillis(at), id,
	))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Payment{}, err
	}
	return domain.Payment{}, r.missOrStale(ctx, `SELECT 1 FROM payments WHERE id = ?`, id)
}

// missOrStale tells a missing row (ErrNotFound) from one whose guard failed.
func (r *paymentsRepo) missOrStale(ctx context.Context, query string, args ...any) error {
	var one int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&one); err != nil {
		return mapNotFound(err)
	}
	return store.ErrConditionFailed
}

func (r *paymentsRepo) HasSuccessful(ctx context.Context, userID, fieldID string) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM payments WHERE user_id = ? AND field_id = ? AND status = 'success'`,
		userID, fieldID,
	).Scan(&n)
	return n > 0, err
}
