package handlers

import (
	"net/http"
	"time"

	"github.com/awakenedyouth/awakened-be/internal/auth"
	"github.com/awakenedyouth/awakened-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for accounts, sessions and user management.
type UserHandler struct {
	service       services.AuthServiceProvider
	tokens        *auth.TokenManager
	secureCookies bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.AuthServiceProvider, tokens *auth.TokenManager, secureCookies bool) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, secureCookies: secureCookies}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new contributor registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload services.RegisterInput
	if !decodeJSON(w, r, &payload) {
		return
	}

	user, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err, "Failed to register user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles authentication and issues the session token.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	session, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		writeError(w, err, "Failed to log in")
		return
	}

	token, err := h.tokens.Generate(session)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Expires:  time.Now().Add(h.tokens.TTL()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  session,
	})
}

// Logout clears the session cookie and tells the page where to go next.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	redirect := h.service.Logout(r.Context(), auth.FromContext(r.Context()), r.URL.Query().Get("from"))

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	writeJSON(w, http.StatusOK, map[string]string{"redirect": redirect})
}

// GetMe returns the caller's session.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.FromContext(r.Context()))
}

// RequestPasswordReset issues a reset token. The token itself is only emailed.
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if _, err := h.service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		writeError(w, err, "Failed to request password reset")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Password reset link sent to your email."})
}

// ResetPassword consumes a reset token.
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), payload.Token, payload.Password); err != nil {
		writeError(w, err, "Failed to reset password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAll lists registered users. Admin only.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, err, "Failed to retrieve users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateStatus activates or deactivates a user. Admin only.
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	user, err := h.service.UpdateUserStatus(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), payload.Status)
	if err != nil {
		writeError(w, err, "Failed to update user status")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
