package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/store"
)

const otpColumns = `email, code_hash, expires_at, last_sent_at, attempts, verified_at, created_at`

type otpsRepo struct {
	q dbtx
}

func scanOTP(row scanner) (domain.OTPRecord, error) {
	var (
		rec                    domain.OTPRecord
		expires, sent, created int64
		verified               sql.NullInt64
	)
	if err := row.Scan(&rec.Email, &rec.CodeHash, &expires, &sent, &rec.Attempts, &verified, &created); err != nil {
		return domain.OTPRecord{}, mapNotFound(err)
	}
	rec.ExpiresAt = fromMillis(expires)
	rec.LastSentAt = fromMillis(sent)
	rec.VerifiedAt = fromNullMillis(verified)
	rec.CreatedAt = fromMillis(created)
	return rec, nil
}

func (r *otpsRepo) Issue(ctx context.Context, rec domain.OTPRecord, cutoff time.Time) (domain.OTPRecord, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO otps (`+otpColumns+`)
		VALUES (?, ?, ?, ?, 0, NULL, ?)
		ON CONFLICT (email) DO UPDATE SET
			code_hash    = excluded.code_hash,
			expires_at   = excluded.expires_at,
			last_sent_at = excluded.last_sent_at,
			attempts     = 0,
			verified_at  = NULL
		WHERE otps.last_sent_at <= ?`,
		rec.Email, rec.CodeHash, toMillis(rec.ExpiresAt), toMillis(rec.LastSentAt), toMillis(rec.LastSentAt),
		toMillis(cutoff),
	)
	if err != nil {
		return domain.OTPRecord{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.OTPRecord{}, err
	}
	if n == 0 {
		existing, err := r.Get(ctx, rec.Email)
		if err != nil {
			return domain.OTPRecord{}, err
		}
		return existing, store.ErrConditionFailed
	}

	return r.Get(ctx, rec.Email)
}

func (r *otpsRepo) Get(ctx context.Context, email string) (domain.OTPRecord, error) {
	return scanOTP(r.q.QueryRowContext(ctx, `SELECT `+otpColumns+` FROM otps WHERE email = ?`, email))
}

func (r *otpsRepo) RecordAttempt(ctx context.Context, email, codeHash string, maxAttempts int, verifiedAt *time.Time) (domain.OTPRecord, error) {
	rec, err := scanOTP(r.q.QueryRowContext(ctx, `
		UPDATE otps
		SET attempts = attempts + 1,
		    verified_at = COALESCE(?, verified_at)
		WHERE email = ? AND code_hash = ? AND attempts < ?
		RETURNING `+otpColumns,
		toNullMillis(verifiedAt), email, codeHash, maxAttempts,
	))
	if errors.Is(err, store.ErrNotFound) {
		if _, getErr := r.Get(ctx, email); getErr != nil {
			return domain.OTPRecord{}, getErr
		}
		return domain.OTPRecord{}, store.ErrConditionFailed
	}
	return rec, err
}

func (r *otpsRepo) Delete(ctx context.Context, email string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM otps WHERE email = ?`, email)
	return err
}

func (r *otpsRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM otps WHERE expires_at < ?`, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
