package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	SessionCookie     = "checkout_session"
	SessionHeader     = "X-Checkout-Session"
	AccessTokenCookie = "accessToken"

	sessionMaxAge = 24 * time.Hour
)

// sessionID returns the caller's checkout session, or "" if none was sent
func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// ensureSession returns the existing session or issues a new one
func ensureSession(w http.ResponseWriter, r *http.Request) string {
	id := sessionID(r)
	if id == "" {
		id = uuid.NewString()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// accessToken reads the bearer token from the Authorization header,
// falling back to the accessToken cookie.
func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.Split(h, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
