// Package models holds the persistent account entity shared by the
// repository and service layers.
package models

import "time"

// Account is one user record. Password hash and salt are set together
// or both absent. Only the most recently issued refresh token is valid;
// rotation overwrites the three refresh fields in place.
type Account struct {
	ID       string
	Username string
	Email    string

	PasswordHash []byte
	PasswordSalt []byte

	LoginAttemptCount int
	VerifiedAt        *time.Time

	VerificationToken          string
	VerificationTokenCreatedAt *time.Time
	VerificationTokenExpires   *time.Time

	PasswordResetToken string
	ResetTokenExpires  *time.Time

	// Cached copy of the last issued access token. Bookkeeping only:
	// access tokens are self-verifying and never checked against it.
	AccessToken          string
	AccessTokenCreatedAt *time.Time
	AccessTokenExpires   *time.Time

	RefreshToken          string
	RefreshTokenCreatedAt *time.Time
	RefreshTokenExpires   *time.Time

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Verified reports whether the account completed e-mail verification.
func (a *Account) Verified() bool {
	return a.VerifiedAt != nil
}

// RefreshRecord is the ephemeral result of issuing a refresh token.
type RefreshRecord struct {
	Token     string
	CreatedAt time.Time
	Expires   time.Time
}
