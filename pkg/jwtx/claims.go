// Package jwtx signs and verifies the short-lived access tokens. Tokens are
// EdDSA (Ed25519) JWTs carrying only registered claims; everything the
// service needs to know about a caller is the subject.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens are deliberately short: they cannot be
// revoked before expiry, so the TTL bounds the blast radius of a leak.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the access-token claims. Only registered claims for now;
// additions must stay backwards compatible.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds claims for one access token: subject, issuance and
// expiry window, issuer, and a random jti.
func NewAccessClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
	}
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
