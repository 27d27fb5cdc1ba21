package sqlite

import (
	"context"
	"time"

	"github.com/accountd/accountd/internal/account/domain"
)

type sessionsRepo struct {
	q dbtx
}

const sessionColumns = `id, user_id, token_hash, expires_at, revoked, created_at, updated_at`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, toMillis(s.ExpiresAt), toMillis(now), toMillis(now),
	)
	return mapConflict(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, tokenHash)

	var (
		s                             domain.Session
		expires, revoked, created, up int64
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &expires, &revoked, &created, &up); err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.ExpiresAt = fromMillis(expires)
	s.Revoked = revoked != 0
	s.CreatedAt = fromMillis(created)
	s.UpdatedAt = fromMillis(up)
	return s, nil
}

// RevokeSession flips revoked on a still-active session. The `AND revoked = 0`
// guard plus the rows-affected check make this the CAS step of rotation:
// a second rotation of the same token matches zero rows and gets ErrNotFound.
func (r *sessionsRepo) RevokeSession(ctx context.Context, tokenHash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked = 1, updated_at = ? WHERE token_hash = ? AND revoked = 0`,
		toMillis(time.Now().UTC()), tokenHash,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *sessionsRepo) RevokeAllUserSessions(ctx context.Context, userID int64) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked = 1, updated_at = ? WHERE user_id = ? AND revoked = 0`,
		toMillis(time.Now().UTC()), userID,
	)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, toMillis(before))
	return err
}
