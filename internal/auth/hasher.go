package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns plain passwords into their stored form and checks candidates
// against it. It is the extension point for a real hashing scheme; the
// account service never compares passwords itself.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(stored, plain string) bool
}

// PlainHasher is the default: the stored form is the password as given.
type PlainHasher struct{}

func (PlainHasher) Hash(plain string) (string, error) {
	return plain, nil
}

func (PlainHasher) Verify(stored, plain string) bool {
	return stored == plain
}

// BcryptHasher stores bcrypt digests. Selectable via configuration.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (BcryptHasher) Verify(stored, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
