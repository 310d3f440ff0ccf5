package user

import (
	"context"
	"errors"

	"bookshop/internal/auth"
)

// Service provides account business logic over a Store.
type Service struct {
	store  Store
	hasher auth.Hasher
}

// NewService creates a new account service.
func NewService(store Store, hasher auth.Hasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Login authenticates username/password. A successful login is the only way
// callers obtain a User handle. Unknown usernames and wrong passwords both
// come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (User, error) {
	if err := s.validateUsername(username); err != nil {
		return User{}, err
	}

	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !s.hasher.Verify(u.Password, password) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Create registers a new account. Duplicate usernames surface as the store's
// ErrAlreadyExists; there is no pre-check here.
func (s *Service) Create(ctx context.Context, username, password string, admin bool) (User, error) {
	if err := s.validateUsername(username); err != nil {
		return User{}, err
	}
	if err := s.validatePassword(password); err != nil {
		return User{}, err
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	u := User{Username: username, Password: stored, Admin: admin}
	if err := s.store.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Get looks an account up by username without authenticating.
func (s *Service) Get(ctx context.Context, username string) (User, error) {
	return s.store.FindByUsername(ctx, username)
}

// Delete re-validates the credentials and then removes the account. An
// absent account reports false with no error; a wrong password is
// ErrInvalidCredentials.
func (s *Service) Delete(ctx context.Context, username, password string) (bool, error) {
	if err := s.validateUsername(username); err != nil {
		return false, err
	}

	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if !s.hasher.Verify(u.Password, password) {
		return false, ErrInvalidCredentials
	}
	return s.store.Delete(ctx, u)
}

// DeleteStored removes the account using its stored password form directly,
// bypassing the hasher. Used by the admin force-delete path, which
// authorizes with the admin's own credential.
func (s *Service) DeleteStored(ctx context.Context, username string) (bool, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.store.Delete(ctx, u)
}

// validateUsername and validatePassword are extension points for format
// rules. No rules are enforced today.
func (s *Service) validateUsername(username string) error {
	return nil
}

func (s *Service) validatePassword(password string) error {
	return nil
}
