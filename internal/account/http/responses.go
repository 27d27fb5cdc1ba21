package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/accountd/accountd/internal/account/domain"
	"github.com/accountd/accountd/internal/account/service"
	"github.com/accountd/accountd/internal/account/store"
	"github.com/accountd/accountd/pkg/httpx"
	"github.com/accountd/accountd/pkg/slogx"
)

// UserResponse is the external shape of a user record. The password hash
// never leaves the service.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// TokenResponse is the external shape of a token pair. Lifetime is reported
// in whole seconds.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func newTokenResponse(p domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int(p.ExpiresIn.Seconds()),
	}
}

// validationResponse carries structured field errors for a 400.
type validationResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields"`
}

// writeServiceError maps service/store errors onto the operation table's
// status codes. Every authentication failure produces the same body; the
// distinct internal causes are logged, never surfaced.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteJSON(w, http.StatusBadRequest, validationResponse{
			Error:  "invalid_request",
			Fields: verr.Fields,
		})
	case errors.Is(err, service.ErrEmptyUpdate):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "at least one field is required")
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "conflict", "email already in use")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no such user")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "authentication failed")
	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
