package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/accountd/accountd/internal/account/domain"
	"github.com/accountd/accountd/internal/account/store"
	"github.com/accountd/accountd/pkg/cryptox"
)

// ErrEmptyUpdate rejects an update carrying no fields, regardless of whether
// the target id exists.
var ErrEmptyUpdate = errors.New("update requires at least one field")

// UserService owns account record reads and mutations. Callers address
// records by the authenticated principal's id only; there is no path that
// mutates somebody else's record.
type UserService struct {
	Store store.Store
}

// GetUser fetches a user by id. Read-only, no transaction.
func (s *UserService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// UpdateUser applies a partial update and returns the record read back
// inside the same transaction. A supplied password is hashed before the
// transaction opens, so no plaintext is held while the store is locked and
// the CPU-bound work never extends a transaction's lifetime.
func (s *UserService) UpdateUser(ctx context.Context, id int64, upd domain.UserUpdate) (domain.User, error) {
	if upd.IsEmpty() {
		return domain.User{}, ErrEmptyUpdate
	}
	if fieldErrs := domain.ValidateUpdate(upd); len(fieldErrs) > 0 {
		return domain.User{}, &ValidationError{Fields: fieldErrs}
	}

	var passwordHash string
	if upd.Password != nil {
		h, err := cryptox.HashPassword(*upd.Password)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = h
	}

	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		users := tx.Users()

		if upd.Name != nil {
			if err := users.UpdateUserName(ctx, id, *upd.Name); err != nil {
				return err
			}
		}
		if upd.Email != nil {
			if err := users.UpdateUserEmail(ctx, id, *upd.Email); err != nil {
				return err
			}
		}
		if upd.Password != nil {
			if err := users.UpdateUserPasswordHash(ctx, id, passwordHash); err != nil {
				return err
			}
		}

		// Read-after-write inside the same transaction.
		updated, err := users.GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser removes the record. The existence check and the delete share
// one transaction so a concurrent delete cannot slip between them.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByID(ctx, id); err != nil {
			return err
		}
		return tx.Users().DeleteUser(ctx, id)
	})
}
