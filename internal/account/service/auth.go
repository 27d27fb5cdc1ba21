package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/accountd/accountd/internal/account/domain"
	"github.com/accountd/accountd/internal/account/store"
	"github.com/accountd/accountd/pkg/cryptox"
	"github.com/accountd/accountd/pkg/slogx"
)

// ValidationError aggregates per-field input errors. Raised before any
// transaction opens, so a rejected request has no side effects.
type ValidationError struct {
	Fields []domain.FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AuthService composes hashing, the credential store, and the token service
// into the login/refresh/logout flows.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Register validates the input, hashes the password, and creates the record
// inside a transaction. The plaintext never reaches the store; a duplicate
// email surfaces as store.ErrAlreadyExists from the commit-time constraint.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	if fieldErrs := domain.ValidateRegistration(name, email, password); len(fieldErrs) > 0 {
		return domain.User{}, &ValidationError{Fields: fieldErrs}
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		created, err := tx.Users().CreateUser(ctx, name, email, hash)
		if err != nil {
			return err
		}
		user = created
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login verifies the email/password pair and issues a fresh token pair.
// Unknown email and wrong password both come back as ErrInvalidCredentials,
// and the unknown-email path still burns a hash verification so response
// timing does not enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, decoyHash())
			log.Info("login failed", "reason", "unknown_email")
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Info("login failed", "reason", "wrong_password", "user_id", user.ID)
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		// A hash that fails to parse is a data problem, not bad credentials.
		return domain.TokenPair{}, fmt.Errorf("verify password: %w", err)
	}

	return s.Tokens.IssuePair(ctx, user.ID)
}

// Refresh rotates the presented refresh token. Failures surface as
// ErrInvalidCredentials, undifferentiated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	return s.Tokens.Rotate(ctx, refreshToken)
}

// Logout revokes every session the user owns. Idempotent; a user with no
// active sessions logs out successfully.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.Tokens.RevokeAllForUser(ctx, userID)
}

var (
	decoyOnce sync.Once
	decoy     string
)

// decoyHash is a valid Argon2id hash of nothing anyone can log in with,
// computed once so the unknown-email path costs the same as a real verify.
func decoyHash() string {
	decoyOnce.Do(func() {
		h, err := cryptox.HashPassword("decoy-not-a-password")
		if err != nil {
			// Entropy failure; the subsequent verify will fail fast, which
			// only costs the timing hardening, not correctness.
			return
		}
		decoy = h
	})
	return decoy
}
