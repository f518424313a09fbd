// Package cookie decides which credential travels in which cookie and with
// which flags.
package cookie

import (
	"net/http"
	"time"
)

const (
	SessionName  = "session_cookie"
	TokenName    = "auth_cookie"
	RememberName = "persistent_cookie"

	// RememberValue is a static advisory flag. It never authenticates.
	RememberValue = "remember_me=true"

	TokenMaxAge    = 2 * time.Hour
	RememberMaxAge = 7 * 24 * time.Hour
)

// Environment names accepted by NewPolicy.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Policy sets and clears the login cookies.
type Policy struct {
	// Secure marks every cookie Secure. Only plaintext local testing runs without it.
	Secure bool
}

// NewPolicy returns the policy for a deployment environment.
func NewPolicy(environment string) Policy {
	return Policy{Secure: environment == EnvProduction}
}

// SetLogin emits the session and token cookies, plus the remember marker when
// requested.
func (p Policy) SetLogin(w http.ResponseWriter, sessionID, token string, remember bool) {
	// browser session lifetime, no Max-Age
	http.SetCookie(w, p.cookie(SessionName, sessionID, http.SameSiteStrictMode, 0))
	http.SetCookie(w, p.cookie(TokenName, token, http.SameSiteStrictMode, TokenMaxAge))

	if remember {
		http.SetCookie(w, p.cookie(RememberName, RememberValue, http.SameSiteLaxMode, RememberMaxAge))
	}
}

// Clear tells the client to discard all three cookies.
func (p Policy) Clear(w http.ResponseWriter) {
	for _, c := range []struct {
		name     string
		sameSite http.SameSite
	}{
		{SessionName, http.SameSiteStrictMode},
		{TokenName, http.SameSiteStrictMode},
		{RememberName, http.SameSiteLaxMode},
	} {
		expired := p.cookie(c.name, "", c.sameSite, 0)
		expired.MaxAge = -1
		expired.Expires = time.Unix(0, 0)
		http.SetCookie(w, expired)
	}
}

func (p Policy) cookie(name, value string, sameSite http.SameSite, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: sameSite,
	}
}

// SessionID returns the session identifier presented by the client, or "".
func SessionID(r *http.Request) string {
	return value(r, SessionName)
}

// Token returns the bearer token presented by the client, or "".
func Token(r *http.Request) string {
	return value(r, TokenName)
}

func value(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
