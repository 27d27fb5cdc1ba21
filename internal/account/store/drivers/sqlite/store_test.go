package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/account/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := NewStore(DSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
}

func TestPing(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Ping(context.Background()))
}

func TestWithTx_CommitsOnNil(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, "Alice", "alice@example.com", "hash")
		return err
	})
	require.NoError(t, err)

	// Visible outside the transaction after commit
	user, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", user.Name)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().CreateUser(ctx, "Alice", "alice@example.com", "hash"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The insert must not have survived
	_, err = st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTx_ExplicitRollback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tx, err := st.Tx(ctx)
	require.NoError(t, err)

	_, err = tx.Users().CreateUser(ctx, "Alice", "alice@example.com", "hash")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	_, err = st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
