package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jwhitfield/atelier/internal/action"
	"github.com/jwhitfield/atelier/internal/auth"
	"github.com/jwhitfield/atelier/internal/middleware"
)

type AuthHandler struct {
	actions *action.Facade
	logger  *slog.Logger
}

func NewAuthHandler(actions *action.Facade, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{actions: actions, logger: logger}
}

type loginRequest struct {
	Code string `json:"code"`
}

// Login exchanges a one-time code for a session cookie. The token is
// also returned in the body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res := h.actions.Login(r.Context(), req.Code)
	if res.Data != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    res.Data.Token,
			Path:     "/",
			MaxAge:   int(auth.SessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		})
	}
	writeResult(w, res)
}

// Logout revokes the presented session and clears the cookie. It
// succeeds even when the cookie is missing or mangled.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	res := h.actions.Logout(r.Context(), middleware.SessionToken(r))

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeResult(w, res)
}
