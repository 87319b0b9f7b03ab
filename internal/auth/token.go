package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	minTokenLength  = 16
	tokenRandomSize = 24
)

// GenerateToken returns a fresh random API token in hex form.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenRandomSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidateToken checks minimal token requirements.
func ValidateToken(token string) error {
	if len(token) < minTokenLength {
		return fmt.Errorf("token must be at least %d characters", minTokenLength)
	}
	return nil
}

// HashToken hashes one plaintext API token for persistent storage.
func HashToken(token string) (string, error) {
	if err := ValidateToken(token); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyToken verifies a presented token against a bcrypt hash.
func VerifyToken(tokenHash, candidate string) bool {
	if strings.TrimSpace(tokenHash) == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(candidate)) == nil
}
