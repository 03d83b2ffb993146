package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "token"

// SessionTTL is how long a login stays valid.
const SessionTTL = 24 * time.Hour

// SessionClaims defines the JWT claims structure for a signed-in staff
// user. A session carries only the username; there is no role model.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type contextKey string

// SessionKey is the context key for session claims.
const SessionKey = contextKey("sessionClaims")

// GenerateSessionToken creates a new session JWT for a username.
func GenerateSessionToken(username string, secret []byte) (string, error) {
	claims := &SessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateSessionToken parses and validates a session JWT string.
func ValidateSessionToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// SetSessionCookie attaches a fresh session cookie to the response.
func SetSessionCookie(w http.ResponseWriter, token string, isProd bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(SessionTTL),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
}

// SessionFromContext returns the claims stored by RequireSession.
func SessionFromContext(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(SessionKey).(*SessionClaims)
	return claims, ok
}

// RequireSession creates a middleware for protecting page routes. A
// request without a valid session is sent to the login page with no
// error banner and no return path, matching the rest of the workflow.
func RequireSession(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			claims, err := ValidateSessionToken(cookie.Value, secret)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
