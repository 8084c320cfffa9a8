package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/noteauth/internal/common"
	"github.com/dmitrijs2005/noteauth/internal/server/requests"
)

const maxBodyBytes = 1 << 20

type validatable interface {
	Validate() error
}

// decode reads and validates a JSON body. It writes the 400 response itself
// and reports false when the request must stop.
func decode(w http.ResponseWriter, r *http.Request, v validatable) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := v.Validate(); err != nil {
		writeValidationError(w, requests.FieldErrors(err))
		return false
	}
	return true
}

func (s *HTTPServer) writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	se := common.AsServiceError(err)
	if se.Kind == common.KindInternal {
		s.logger.Error(ctx, "request failed", "error", se.Err)
	}
	writeError(w, se.StatusCode(), se.Message)
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req requests.Register
	if !decode(w, r, &req) {
		return
	}
	tokens, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "User registered successfully", tokens)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req requests.Login
	if !decode(w, r, &req) {
		return
	}
	tokens, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User logged in successfully", tokens)
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req requests.RefreshToken
	if !decode(w, r, &req) {
		return
	}
	tokens, err := s.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Tokens refreshed successfully", tokens)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req requests.RefreshToken
	if !decode(w, r, &req) {
		return
	}
	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User logged out successfully", nil)
}

type tokenPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Iat    int64  `json:"iat"`
	Exp    int64  `json:"exp"`
}

func (s *HTTPServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	token, ok := common.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	claims, err := s.auth.ValidateToken(r.Context(), token)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}

	p := tokenPayload{UserID: claims.UserID, Email: claims.Email}
	if claims.IssuedAt != nil {
		p.Iat = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		p.Exp = claims.ExpiresAt.Unix()
	}
	writeSuccess(w, http.StatusOK, "Token is valid", p)
}

type profilePayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	cred, err := s.auth.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Profile retrieved successfully", profilePayload{
		ID:        cred.ID,
		Email:     cred.Email,
		CreatedAt: cred.CreatedAt,
		UpdatedAt: cred.UpdatedAt,
	})
}

func (s *HTTPServer) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := s.auth.DeleteAccount(r.Context(), claims.UserID); err != nil {
		s.writeServiceError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Account deleted successfully", nil)
}
