package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/kosar/admin-be/internal/auth"
	"github.com/kosar/admin-be/internal/services"
)

// AuthHandler handles the login and logout pages.
type AuthHandler struct {
	credentials services.CredentialServiceProvider
	jwtSecret   []byte
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(credentials services.CredentialServiceProvider, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{credentials: credentials, jwtSecret: jwtSecret}
}

// ShowLogin renders the login form. It renders even for a request that
// already carries a valid session; the page has always behaved that way.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":   "login",
		"notice": noticeFrom(r),
	})
}

// Login handles a login form submission. A failed check re-renders the
// form with an error and no redirect.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	cred, err := h.credentials.Authenticate(username, password)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) || errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("username", username).Msg("Failed authentication attempt")
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"page":  "login",
				"error": "Incorrect username or password",
			})
			return
		}
		log.Error().Err(err).Str("username", username).Msg("Login check failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "login",
			"error": "Login is unavailable right now",
		})
		return
	}

	token, err := auth.GenerateSessionToken(cred.Username, h.jwtSecret)
	if err != nil {
		log.Error().Err(err).Str("username", cred.Username).Msg("Failed to generate session token")
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"page":  "login",
			"error": "Login is unavailable right now",
		})
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"
	auth.SetSessionCookie(w, token, isProd)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
