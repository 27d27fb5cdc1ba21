package http

import (
	"encoding/json"
	"net/http"

	"github.com/accountd/accountd/internal/account/domain"
	"github.com/accountd/accountd/internal/account/service"
	"github.com/accountd/accountd/pkg/httpx"
	"github.com/accountd/accountd/pkg/slogx"
)

// SelfHandler serves the authenticated user's own record. The principal
// comes from the access token, never from the URL.
type SelfHandler struct {
	UserService *service.UserService
}

type updateSelfRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *SelfHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	user, err := h.UserService.GetUser(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *SelfHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req updateSelfRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	user, err := h.UserService.UpdateUser(ctx, userID, domain.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newUserResponse(user))
}

// Delete removes the account. Sessions go with it via the foreign key
// cascade, so outstanding refresh tokens die immediately.
func (h *SelfHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	if err := h.UserService.DeleteUser(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("user deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
