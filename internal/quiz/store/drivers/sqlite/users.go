package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
)

const userColumns = `id, name, email, mobile, password_hash, user_type, role,
	email_verified, disabled, last_login_at, created_at, updated_at`

type usersRepo struct {
	q dbtx
}

func scanUser(row scanner) (domain.User, error) {
	var (
		u                domain.User
		email, mobile    sql.NullString
		userType, role   string
		lastLogin        sql.NullInt64
		created, updated int64
	)
	err := row.Scan(&u.ID, &u.Name, &email, &mobile, &u.PasswordHash, &userType, &role,
		&u.EmailVerified, &u.Disabled, &lastLogin, &created, &updated)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Email = email.String
	u.Mobile = mobile.String
	u.UserType = domain.UserType(userType)
	u.Role = domain.Role(role)
	u.LastLoginAt = fromNullMillis(lastLogin)
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, toNullString(u.Email), toNullString(u.Mobile), u.PasswordHash,
		string(u.UserType), string(u.Role), u.EmailVerified, u.Disabled,
		toNullMillis(u.LastLoginAt), toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *usersRepo) GetByMobile(ctx context.Context, mobile string) (domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = ?`, mobile))
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		toMillis(at), toMillis(at), id))
}

func (r *usersRepo) SetDisabled(ctx context.Context, id string, disabled bool, at time.Time) error {
	return expectOne(r.q.ExecContext(ctx,
		`UPDATE users SET disabled = ?, updated_at = ? WHERE id = ?`,
		disabled, toMillis(at), id))
}
