package handlers

import (
	"net/http"
	"strings"

	"github.com/abrezinsky/mvpboard/internal/auth"
)

// handleLogin validates the board password, resolves the display name
// to a stable user, and issues a session cookie.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if !h.Auth.CheckPassword(req.Password) {
		respondError(w, Unauthorized("Invalid password"))
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		respondError(w, BadRequest("Display name is required"))
		return
	}

	user, err := h.Picker.SignIn(r.Context(), req.DisplayName, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Class.Refresh(r.Context()); err != nil {
		respondError(w, err)
		return
	}

	token := h.Auth.CreateSession(user)
	auth.SetSessionCookie(w, token)
	respondOK(w, LoginResponse{User: user})
}

// handleLogout invalidates the session and resets the board state
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}

	h.Picker.SignOut()
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Signed out")
}

// handleMe reports the signed-in user
func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.Auth.CurrentUser(r)
	if !ok {
		respondError(w, ErrUnauthorized)
		return
	}
	respondOK(w, MeResponse{User: user})
}
