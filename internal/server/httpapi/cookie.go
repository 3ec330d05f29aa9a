package httpapi

import (
	"net/http"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

// setRefreshCookie delivers a freshly rotated refresh token. The cookie
// is scoped to the whole site, unreadable from scripts, and restricted
// to same-site HTTPS requests.
func setRefreshCookie(w http.ResponseWriter, rec models.RefreshRecord) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    rec.Token,
		Path:     "/",
		Expires:  rec.Expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
