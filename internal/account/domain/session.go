package domain

import "time"

// Session is the registry record for one issued refresh token. Only the
// SHA-256 fingerprint of the opaque token is stored. The revoked flag is
// monotonic: once true it never flips back.
type Session struct {
	ID        string // ULID
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the session can still be redeemed. Expiry is a
// read-time check; nothing mutates the row when a session ages out.
func (s Session) Active(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
