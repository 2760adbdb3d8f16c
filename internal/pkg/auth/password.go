// internal/pkg/auth/password.go
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"qwerty123": {}, "letmein1": {}, "welcome1": {}, "iloveyou": {}, "sunshine": {},
}

// PasswordManager handles password hashing and strength rules
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a new password manager. Costs outside bcrypt's
// range fall back to bcrypt.DefaultCost.
func NewPasswordManager(cost int) *PasswordManager {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordManager{cost: cost}
}

// HashPassword validates and hashes a password using bcrypt
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := p.ValidatePassword(password); err != nil {
		return "", err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword verifies a password against its hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword checks length, rejects all-digit and common passwords
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return errors.New("password must be no more than 72 characters long")
	}

	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return errors.New("password cannot be entirely numeric")
	}

	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return errors.New("password is too common")
	}
	return nil
}
