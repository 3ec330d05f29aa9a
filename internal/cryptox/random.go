package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
)

// TokenSize is the amount of random material behind every opaque token,
// in bytes.
const TokenSize = 64

// MakeRandHexString generates size random bytes and returns them
// hex-encoded, so the resulting string is twice as long as size.
// Verification and password-reset tokens use this form.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// MakeRandBase64String generates size random bytes and returns them in
// standard base64. Refresh tokens use this form.
func MakeRandBase64String(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
