package user

import (
	"context"
)

// Store defines the contract for account persistence. The store is the
// source of truth for username uniqueness: Insert fails with
// ErrAlreadyExists on a duplicate, no pre-check happens in the service.
type Store interface {
	Insert(ctx context.Context, u User) error
	// FindByUsername returns ErrNotFound when the account is absent.
	FindByUsername(ctx context.Context, username string) (User, error)
	// Delete removes the account equal to u. It reports false when no such
	// account was stored.
	Delete(ctx context.Context, u User) (bool, error)
}
