// Package cryptox implements the credential primitives of the service:
// keyed password hashing and cryptographically random token material.
package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
)

// PasswordKeySize is the size of the per-password random key, in bytes.
// The key doubles as the stored "salt": it parameterizes the HMAC rather
// than being concatenated with the password.
const PasswordKeySize = 64

// HashPassword computes an HMAC-SHA-512 digest of the password under a
// fresh random 512-bit key. Both the digest and the key must be stored;
// neither is secret on its own but together they verify the password.
func HashPassword(password string) (digest, key []byte, err error) {
	key = make([]byte, PasswordKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, err
	}

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(password))
	return mac.Sum(nil), key, nil
}

// VerifyPassword recomputes the keyed hash of password under key and
// compares it with digest in constant time. The comparison must not
// short-circuit on the first mismatching byte.
func VerifyPassword(password string, digest, key []byte) bool {
	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(password))
	return subtle.ConstantTimeCompare(mac.Sum(nil), digest) == 1
}
