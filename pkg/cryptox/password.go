package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters, following the OWASP minimum recommendation.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var b64 = base64.RawStdEncoding

// ErrPasswordMismatch is returned by VerifyPassword when the plaintext does
// not produce the stored hash. A mismatch is a routine outcome, not a fault.
var ErrPasswordMismatch = errors.New("cryptox: password does not match")

// HashPassword derives an Argon2id hash of the password with a fresh random
// salt and returns it as a PHC-format string. The only failure mode is the
// entropy source; the password content itself can never cause an error.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	key := argon2.IDKey([]byte(password+GetPepper()), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key),
	), nil
}

// VerifyPassword recomputes the hash with the parameters and salt embedded in
// encodedHash and compares in constant time. It returns ErrPasswordMismatch
// for a wrong password and a descriptive error for a malformed hash.
func VerifyPassword(password, encodedHash string) error {
	params, salt, want, err := decodePHC(encodedHash)
	if err != nil {
		return err
	}

	got := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		params.iterations,
		params.memory,
		params.parallelism,
		uint32(len(want)), // #nosec G115 -- hash length is bounded by the PHC string
	)

	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

type phcParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

// decodePHC splits "$argon2id$v=19$m=X,t=Y,p=Z$salt$hash" into its parts.
func decodePHC(encoded string) (phcParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phcParams{}, nil, nil, errors.New("cryptox: malformed hash: expected 6 PHC segments")
	}
	if parts[1] != "argon2id" {
		return phcParams{}, nil, nil, errors.New("cryptox: malformed hash: not argon2id")
	}
	if parts[2] != "v=19" {
		return phcParams{}, nil, nil, errors.New("cryptox: malformed hash: unsupported version")
	}

	var p phcParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: malformed hash parameters: %w", err)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: malformed salt: %w", err)
	}
	hash, err := b64.DecodeString(parts[5])
	if err != nil {
		return phcParams{}, nil, nil, fmt.Errorf("cryptox: malformed hash: %w", err)
	}

	return p, salt, hash, nil
}
