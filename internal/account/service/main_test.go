package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/account/store"
	"github.com/accountd/accountd/internal/account/store/drivers/sqlite"
	"github.com/accountd/accountd/pkg/cryptox"
	"github.com/accountd/accountd/pkg/jwtx"
)

func TestMain(m *testing.M) {
	// Set up a temporary pepper file for testing
	tmpDir := os.TempDir()
	pepperPath := filepath.Join(tmpDir, "test-service-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

type testEnv struct {
	Store  store.Store
	Tokens *TokenService
	Auth   *AuthService
	Users  *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	signer, verifier, err := jwtx.GenerateEphemeralEdDSA("test-kid", "accountd-test")
	require.NoError(t, err)

	tokens := &TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      st,
		Issuer:     "accountd-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	return &testEnv{
		Store:  st,
		Tokens: tokens,
		Auth:   &AuthService{Store: st, Tokens: tokens},
		Users:  &UserService{Store: st},
	}
}

// registerAlice seeds the canonical test account.
func (e *testEnv) registerAlice(t *testing.T) {
	t.Helper()
	_, err := e.Auth.Register(context.Background(), "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
}
