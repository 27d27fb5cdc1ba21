package http

import (
	"net/http"

	"github.com/accountd/accountd/internal/account/service"
	"github.com/accountd/accountd/pkg/httpx"
	"github.com/accountd/accountd/pkg/slogx"
)

type LogoutHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP revokes every session of the authenticated principal.
// Idempotent, so repeated logouts are fine.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	if err := h.AuthService.Logout(ctx, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("user logged out", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
