package domain

import "time"

// User is an account record. The id is assigned by the store on insert and
// never changes. PasswordHash holds an Argon2id PHC string; plaintext never
// crosses the store boundary.
type User struct {
	ID           int64
	Name         string
	Email        string // unique across non-deleted users, case-sensitive
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate is a partial mutation of a user record. Nil fields are left
// untouched. Password carries plaintext only as far as the service layer,
// which hashes it before anything is persisted.
type UserUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// IsEmpty reports whether the update carries no fields at all.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Password == nil
}
