package sqlite

import (
	"context"
	"time"

	"github.com/accountd/accountd/internal/account/domain"
)

type usersRepo struct {
	q dbtx
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, email, passwordHash, toMillis(now), toMillis(now),
	)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}

	return domain.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdateUserName(ctx context.Context, id int64, name string) error {
	return r.updateField(ctx, `UPDATE users SET name = ?, updated_at = ? WHERE id = ?`, name, id)
}

func (r *usersRepo) UpdateUserEmail(ctx context.Context, id int64, email string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET email = ?, updated_at = ? WHERE id = ?`,
		email, toMillis(time.Now().UTC()), id,
	)
	if err != nil {
		return mapConflict(err)
	}
	return requireRow(res)
}

func (r *usersRepo) UpdateUserPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	return r.updateField(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, passwordHash, id)
}

func (r *usersRepo) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) updateField(ctx context.Context, query, value string, id int64) error {
	res, err := r.q.ExecContext(ctx, query, value, toMillis(time.Now().UTC()), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u                  domain.User
		createdAt, updated int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt, &updated); err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}
