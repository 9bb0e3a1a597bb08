package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost     = 12
	MinPasswordLen = 8
	MaxPasswordLen = 128
)

// Weak patterns rejected anywhere inside a password, case-insensitive.
var weakPatterns = []string{
	"123456",
	"password",
	"admin",
	"qwerty",
}

// HashPassword hashes a password with bcrypt. Each call salts randomly, so
// two hashes of the same password never compare equal as strings.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// bcrypt compares in constant time. A malformed stored hash is treated as a
// mismatch rather than an error; the anomaly is logged so a corrupted row
// does not pass silently.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err == nil {
		return true
	}
	if err != bcrypt.ErrMismatchedHashAndPassword {
		slog.Warn("password verification anomaly", slog.Any("error", err))
	}
	return false
}

// PasswordValidationError holds the individual policy violations.
type PasswordValidationError struct {
	Errors []string
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password does not meet requirements"
	}
	return "password must include: " + strings.Join(e.Errors, ", ")
}

// ValidatePassword enforces the password policy: minimum length, at most one
// missing character class, and no common weak patterns.
func ValidatePassword(password string, minLen int) error {
	if minLen <= 0 {
		minLen = MinPasswordLen
	}

	if len(password) < minLen {
		return &PasswordValidationError{
			Errors: []string{fmt.Sprintf("at least %d characters", minLen)},
		}
	}
	if len(password) > MaxPasswordLen {
		return &PasswordValidationError{
			Errors: []string{fmt.Sprintf("at most %d characters", MaxPasswordLen)},
		}
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	hasSpecial := false

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	missing := make([]string, 0, 4)
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSpecial {
		missing = append(missing, "a special character")
	}

	// One missing character class is tolerated.
	if len(missing) > 1 {
		return &PasswordValidationError{Errors: missing}
	}

	lower := strings.ToLower(password)
	for _, pattern := range weakPatterns {
		if strings.Contains(lower, pattern) {
			return &PasswordValidationError{
				Errors: []string{"no common weak patterns"},
			}
		}
	}

	return nil
}
