package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs claims into a compact JWT.
type Signer interface {
	KID() string
	Sign(Claims) (string, error)
}

// EdDSASigner signs tokens with a single Ed25519 key.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSignerEdDSA wraps an existing Ed25519 private key.
func NewSignerEdDSA(kid string, key ed25519.PrivateKey) (*EdDSASigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 private key size")
	}
	return &EdDSASigner{
		kid: kid,
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

// GenerateEphemeralEdDSA creates a fresh keypair and returns a matched
// signer/verifier pair. Tokens signed before a restart become invalid, which
// is acceptable for short-lived access tokens.
func GenerateEphemeralEdDSA(kid, issuer string) (*EdDSASigner, *EdDSAVerifier, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: generate Ed25519 key: %w", err)
	}

	signer, err := NewSignerEdDSA(kid, priv)
	if err != nil {
		return nil, nil, err
	}
	return signer, NewVerifierEdDSA(kid, pub, issuer), nil
}

func (s *EdDSASigner) KID() string { return s.kid }

// Sign turns the claims into a signed compact JWT with a kid header.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicKey exposes the verification key, e.g. for handing to a verifier in
// another process.
func (s *EdDSASigner) PublicKey() ed25519.PublicKey { return s.pub }
