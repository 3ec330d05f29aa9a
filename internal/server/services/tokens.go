package services

import (
	"time"

	"github.com/dsavelev/authkeeper/internal/cryptox"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

// issuedToken is a freshly minted out-of-band token (verification or
// password reset) together with its lifetime.
type issuedToken struct {
	Token     string
	CreatedAt time.Time
	Expires   time.Time
}

// mintOpaqueToken creates a hex-encoded single-use token from 64 random
// bytes. Verification and password-reset tokens share this form.
func mintOpaqueToken(validity time.Duration) (issuedToken, error) {
	token, err := cryptox.MakeRandHexString(cryptox.TokenSize)
	if err != nil {
		return issuedToken{}, err
	}
	now := time.Now()
	return issuedToken{Token: token, CreatedAt: now, Expires: now.Add(validity)}, nil
}

// mintRefreshRecord creates a base64-encoded opaque refresh token from
// 64 random bytes.
func mintRefreshRecord(validity time.Duration) (models.RefreshRecord, error) {
	token, err := cryptox.MakeRandBase64String(cryptox.TokenSize)
	if err != nil {
		return models.RefreshRecord{}, err
	}
	now := time.Now()
	return models.RefreshRecord{Token: token, CreatedAt: now, Expires: now.Add(validity)}, nil
}
