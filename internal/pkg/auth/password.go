// internal/pkg/auth/password.go
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/your-org/hardware-admin/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword wraps every password strength failure
var ErrWeakPassword = errors.New("password does not meet requirements")

var commonPasswords = []string{
	"password", "123456", "admin", "qwerty", "letmein", "welcome", "hardware",
}

// PasswordManager handles password operations
type PasswordManager struct {
	cost int
}

// NewPasswordManager creates a new password manager
func NewPasswordManager(cfg *config.Config) *PasswordManager {
	cost := cfg.Security.BcryptCost
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

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword validates password strength
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: at least 8 characters", ErrWeakPassword)
	}

	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return fmt.Errorf("%w: no more than 72 characters", ErrWeakPassword)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("%w: mix upper case, lower case and digits", ErrWeakPassword)
	}

	if hasTripleRepeat(password) {
		return fmt.Errorf("%w: no more than 2 repeating characters", ErrWeakPassword)
	}

	lower := strings.ToLower(password)
	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			return fmt.Errorf("%w: too common and easily guessable", ErrWeakPassword)
		}
	}

	return nil
}

const temporaryAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// GenerateTemporaryPassword generates a random password that passes ValidatePassword
func (p *PasswordManager) GenerateTemporaryPassword() (string, error) {
	for {
		buf := make([]byte, 14)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(temporaryAlphabet))))
			if err != nil {
				return "", fmt.Errorf("failed to generate password: %w", err)
			}
			buf[i] = temporaryAlphabet[n.Int64()]
		}
		password := string(buf)
		if p.ValidatePassword(password) == nil {
			return password, nil
		}
	}
}

// hasTripleRepeat reports whether a character occurs three times in a row
func hasTripleRepeat(password string) bool {
	runes := []rune(password)
	for i := 2; i < len(runes); i++ {
		if runes[i] == runes[i-1] && runes[i] == runes[i-2] {
			return true
		}
	}
	return false
}
