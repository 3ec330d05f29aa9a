package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type editRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpires time.Time `json:"access_token_expires"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Verified:  a.Verified(),
		CreatedAt: a.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps sentinel errors to HTTP statuses. Anything
// unrecognized becomes a plain 500 so internals never leak.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorConflict):
		writeJSON(w, http.StatusConflict, messageResponse{Message: "already exists"})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "not found"})
	case errors.Is(err, common.ErrorAccountLocked):
		writeJSON(w, http.StatusForbidden, messageResponse{Message: "account locked"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	account, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:        pair.AccessToken,
		AccessTokenExpires: pair.AccessTokenExpires,
	})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	account, err := s.auth.Verify(r.Context(), req.Token)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
		return
	}

	pair, err := s.auth.RefreshToken(r.Context(), cookie.Value)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, sessionResponse{
		AccessToken:        pair.AccessToken,
		AccessTokenExpires: pair.AccessTokenExpires,
	})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	if _, err := s.auth.ForgotPassword(r.Context(), req.Username); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "reset token issued"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	if _, err := s.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "password updated"})
}

func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.auth.List(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.auth.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
		return
	}

	account, err := s.auth.GetByUsername(r.Context(), claims.Subject)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) editAccount(w http.ResponseWriter, r *http.Request) {
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request"})
		return
	}

	account, err := s.auth.Edit(r.Context(), req.ID, req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
