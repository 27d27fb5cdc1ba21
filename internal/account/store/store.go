package store

import (
	"context"
	"errors"
	"time"

	"github.com/accountd/accountd/internal/account/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it and
// expose the sub-repositories. Check-then-write sequences must go through
// Tx/WithTx; the sub-repositories themselves never open transactions, which
// keeps nested transactions impossible by construction.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn inside a transaction: commit when fn returns nil,
	// rollback on any error or mid-flight context cancellation. The
	// transaction handle is released on every exit path, so callers never
	// clean up manually. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying database handle.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store: the same repositories plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new record and returns it with the store-assigned
	// id and timestamps. A duplicate email surfaces as ErrAlreadyExists when
	// the insert (or enclosing transaction) commits.
	CreateUser(ctx context.Context, name, email, passwordHash string) (domain.User, error)

	// GetUserByID returns a user by id, or ErrNotFound.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail is used during login.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// Per-field updates; each bumps updated_at and returns ErrNotFound when
	// the id does not exist.
	UpdateUserName(ctx context.Context, id int64, name string) error
	UpdateUserEmail(ctx context.Context, id int64, email string) error
	UpdateUserPasswordHash(ctx context.Context, id int64, passwordHash string) error

	// DeleteUser removes the record; sessions cascade per schema.
	DeleteUser(ctx context.Context, id int64) error
}

type Sessions interface {
	// CreateSession stores a new refresh-token record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session by token fingerprint,
	// or ErrNotFound.
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// RevokeSession flips revoked on a single still-active session. It
	// returns ErrNotFound when no active row matched, which makes it the
	// compare-and-swap step of refresh rotation: of two concurrent rotations
	// of the same token, exactly one sees a row flip.
	RevokeSession(ctx context.Context, tokenHash string) error

	// RevokeAllUserSessions revokes every active session owned by the user.
	// Idempotent; revoking an already-revoked set is a no-op.
	RevokeAllUserSessions(ctx context.Context, userID int64) error

	// DeleteExpiredSessions removes sessions whose expiry lies before the
	// cutoff. Housekeeping only; validity is never derived from deletion.
	DeleteExpiredSessions(ctx context.Context, before time.Time) error
}
