package auth

import (
	"sync"

	"github.com/example/varsha-shop/internal/apperror"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = apperror.Validation("password must be at least 6 characters")
)

const (
	bcryptCost        = 10
	MinPasswordLength = 6
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a password with its hash. A malformed or empty
// hash is indistinguishable from a wrong password.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// PlaceholderHash is a valid bcrypt hash at the service cost that matches
// no real password. Checking against it when an account is missing keeps
// login latency the same for unknown and known emails.
var PlaceholderHash = sync.OnceValue(func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("placeholder-password-never-issued"), bcryptCost)
	if err != nil {
		return ""
	}
	return string(hash)
})
