package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/accountd/accountd/pkg/jwtx"
)

// InitAuthKeys generates the process-local Ed25519 signing key. Keys live
// only in memory, so a restart invalidates outstanding access tokens. Those
// are short-lived and clients recover via their refresh token.
func InitAuthKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, jwtx.Verifier, error) {
	kid, err := newKID()
	if err != nil {
		return nil, nil, err
	}

	signer, verifier, err := jwtx.GenerateEphemeralEdDSA(kid, cfg.Issuer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	logger.Info("ephemeral signing key generated", "kid", kid, "algorithm", "EdDSA")
	return signer, verifier, nil
}

func newKID() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key identifier: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
