package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const tokenPrefix = "mh_"

// GenerateRandomToken returns a plain-text token with the mh_ prefix
func GenerateRandomToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s", tokenPrefix, hex.EncodeToString(b)), nil
}

// HashToken converts a plain-text token into a SHA256 hex string
func HashToken(plainText string) string {
	hash := sha256.Sum256([]byte(plainText))
	return hex.EncodeToString(hash[:])
}
