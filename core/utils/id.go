package utils

import (
	"crypto/rand"
	"encoding/base64"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short opaque id for in-memory slots.
func GenerateID() string {
	return GenerateIDOfLength(12)
}

func GenerateIDOfLength(n int) string {
	id, err := gonanoid.Generate(idAlphabet, n)
	if err != nil {
		return gonanoid.Must(n)
	}
	return id
}

// GenerateRandomString generates a cryptographically secure random string
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return GenerateIDOfLength(length)
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length]
}
