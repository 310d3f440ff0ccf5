package user

import (
	"errors"
)

var (
	// ErrNotFound is returned when no account with the given username exists.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned by stores on a duplicate username.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrInvalidCredentials covers both an unknown username and a password
	// mismatch; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is a bookstore account. Username is the unique key. Password holds
// whatever the configured hasher produced; with the default plain hasher
// that is the password as given.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Admin    bool   `json:"admin"`
}

// Equal reports structural equality on all three fields.
func (u User) Equal(other User) bool {
	return u == other
}
