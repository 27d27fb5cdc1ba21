package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/accountd/accountd/internal/account/domain"
	"github.com/accountd/accountd/internal/account/store"
	"github.com/accountd/accountd/pkg/cryptox"
	"github.com/accountd/accountd/pkg/idx"
	"github.com/accountd/accountd/pkg/jwtx"
)

var (
	// ErrInvalidCredentials covers every authentication failure a caller can
	// see: unknown email, wrong password, and unknown/expired/revoked
	// refresh tokens. The conditions stay distinct internally for logging,
	// but the boundary never differentiates them.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	ErrInvalidToken = errors.New("invalid_token")
	ErrTokenExpired = errors.New("token_expired")
)

// TokenService issues and verifies access tokens and owns the refresh-token
// session lifecycle against the store.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// IssueAccessToken signs a short-lived access token for the user. Pure
// function of the inputs and the process signing key; nothing is persisted.
func (s *TokenService) IssueAccessToken(userID int64, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(strconv.FormatInt(userID, 10), s.Issuer, s.AccessTTL, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// VerifyAccessToken validates signature and time window and returns the
// subject. Expiry and invalidity are reported separately; there is no
// revocation check, the short TTL bounds the blast radius of a leak.
func (s *TokenService) VerifyAccessToken(token string) (int64, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// IssuePair mints a fresh access token and a fresh refresh token, recording
// the refresh token's fingerprint as a new session.
func (s *TokenService) IssuePair(ctx context.Context, userID int64) (domain.TokenPair, error) {
	now := time.Now()

	access, err := s.IssueAccessToken(userID, now)
	if err != nil {
		return domain.TokenPair{}, err
	}

	opaque, err := cryptox.GenerateToken(cryptox.RefreshTokenSize)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	session := domain.Session{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.TokenPair{}, fmt.Errorf("create session: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: opaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Rotate exchanges a refresh token for a new pair. Revoking the old session
// and creating the new one happen in one transaction, and the revoke only
// succeeds against a still-active row: presenting an already-rotated token a
// second time always fails, which is how replay of a consumed token is
// detected. Exactly one of two concurrent rotations of the same token wins.
func (s *TokenService) Rotate(ctx context.Context, refreshOpaque string) (domain.TokenPair, error) {
	now := time.Now()
	fp := cryptox.FingerprintToken(refreshOpaque)

	var pair domain.TokenPair
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		session, err := tx.Sessions().GetSessionByTokenHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if !session.Active(now) {
			return ErrInvalidCredentials
		}

		if err := tx.Sessions().RevokeSession(ctx, fp); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Lost the race against a concurrent rotation or logout.
				return ErrInvalidCredentials
			}
			return err
		}

		access, err := s.IssueAccessToken(session.UserID, now)
		if err != nil {
			return err
		}

		opaque, err := cryptox.GenerateToken(cryptox.RefreshTokenSize)
		if err != nil {
			return fmt.Errorf("generate refresh token: %w", err)
		}

		next := domain.Session{
			ID:        idx.New().String(),
			UserID:    session.UserID,
			TokenHash: cryptox.FingerprintToken(opaque),
			ExpiresAt: now.Add(s.RefreshTTL),
		}
		if err := tx.Sessions().CreateSession(ctx, next); err != nil {
			return fmt.Errorf("create rotated session: %w", err)
		}

		pair = domain.TokenPair{
			AccessToken:  access,
			RefreshToken: opaque,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}
		return nil
	})
	if err != nil {
		return domain.TokenPair{}, err
	}
	return pair, nil
}

// RevokeAllForUser revokes every outstanding session the user owns. Keyed by
// owner rather than by a token snapshot, so a session minted by a refresh
// racing this call is revoked too once the refresh commits first.
func (s *TokenService) RevokeAllForUser(ctx context.Context, userID int64) error {
	return s.Store.Sessions().RevokeAllUserSessions(ctx, userID)
}
