package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dsavelev/authkeeper/internal/server/auth"
)

type contextKey int

const claimsContextKey contextKey = iota

// authMiddleware verifies the bearer access token and stores its claims
// in the request context. Handlers read the caller identity from the
// claims, never from the raw header.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if header == "" || tokenString == header {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
			return
		}

		claims, err := auth.ParseToken(tokenString, s.jwtSecret)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}
