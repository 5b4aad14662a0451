package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/trendmart/storefront/internal/domain/user"
)

// BcryptHasher implements user.PasswordHasher with bcrypt at the default cost.
type BcryptHasher struct{}

var _ user.PasswordHasher = BcryptHasher{}

// Hash generates a salted bcrypt hash of the password.
func (BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Check reports whether the password matches the stored hash.
func (BcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
