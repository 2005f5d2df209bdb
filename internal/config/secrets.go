package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

type SecretType string

const (
	SecretTypeHex      SecretType = "hex"
	SecretTypePassword SecretType = "password"
)

// GenerateSecret returns a random secret suitable for auth.jwt.secret or a
// database password.
func GenerateSecret(secretType SecretType, length int) (string, error) {
	switch secretType {
	case SecretTypeHex:
		return generateHex(length)
	case SecretTypePassword:
		return generatePassword(length)
	default:
		return "", fmt.Errorf("unknown secret type: %s", secretType)
	}
}

func generateHex(length int) (string, error) {
	if length < 32 {
		length = 32
	}
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:length], nil
}

func generatePassword(length int) (string, error) {
	if length < 12 {
		length = 12
	}

	// URL-safe base64 yields only A-Z, a-z, 0-9, - and _.
	buf := make([]byte, (length*3)/4+1)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	result := base64.RawURLEncoding.EncodeToString(buf)
	if len(result) > length {
		result = result[:length]
	}
	return result, nil
}
