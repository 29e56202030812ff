package auth

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/storefront/pkg/util/errorutil"
	"github.com/spec-kit/storefront/pkg/util/validate"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CheckPassword rejects passwords shorter than MinPasswordLength.
func CheckPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errorutil.NewValidationCode(errorutil.CodeWeakPassword, "password must be at least 6 characters")
	}
	return nil
}

// CheckEmail rejects malformed addresses.
func CheckEmail(email string) error {
	if !validate.Var(email, "required,email") {
		return errorutil.NewValidationCode(errorutil.CodeInvalidEmail, "email address is invalid")
	}
	return nil
}
