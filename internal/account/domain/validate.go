package domain

import (
	"fmt"
	"net/mail"
	"unicode/utf8"
)

// Field length limits for account records, counted in characters, not bytes.
const (
	NameMaxLen     = 100
	EmailMaxLen    = 150
	PasswordMinLen = 6
	PasswordMaxLen = 50
)

// FieldError describes one invalid input field. Validation runs before any
// transaction opens, so a rejected request has no side effects.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRegistration checks the full field set required to create a user.
// It returns every violation, not just the first.
func ValidateRegistration(name, email, password string) []FieldError {
	var errs []FieldError
	errs = appendNameErrors(errs, name)
	errs = appendEmailErrors(errs, email)
	errs = appendPasswordErrors(errs, password)
	return errs
}

// ValidateUpdate checks only the fields present in a partial update.
// An empty update is the caller's error and is rejected earlier.
func ValidateUpdate(u UserUpdate) []FieldError {
	var errs []FieldError
	if u.Name != nil {
		errs = appendNameErrors(errs, *u.Name)
	}
	if u.Email != nil {
		errs = appendEmailErrors(errs, *u.Email)
	}
	if u.Password != nil {
		errs = appendPasswordErrors(errs, *u.Password)
	}
	return errs
}

func appendNameErrors(errs []FieldError, name string) []FieldError {
	if name == "" {
		return append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if utf8.RuneCountInString(name) > NameMaxLen {
		errs = append(errs, FieldError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", NameMaxLen)})
	}
	return errs
}

func appendEmailErrors(errs []FieldError, email string) []FieldError {
	if email == "" {
		return append(errs, FieldError{Field: "email", Message: "must not be empty"})
	}
	if utf8.RuneCountInString(email) > EmailMaxLen {
		errs = append(errs, FieldError{Field: "email", Message: fmt.Sprintf("must be at most %d characters", EmailMaxLen)})
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs = append(errs, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	return errs
}

func appendPasswordErrors(errs []FieldError, password string) []FieldError {
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return append(errs, FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", PasswordMinLen)})
	}
	if utf8.RuneCountInString(password) > PasswordMaxLen {
		errs = append(errs, FieldError{Field: "password", Message: fmt.Sprintf("must be at most %d characters", PasswordMaxLen)})
	}
	return errs
}
