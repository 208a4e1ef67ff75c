package session

import (
	"net/http"
)

// Session Marker cookie names. The edge gate trusts these three cookies as
// proof of authentication; all of them must be present simultaneously.
const (
	CookieUserID    = "userId"
	CookieUserEmail = "userEmail"
	CookieAuthToken = "authToken"
)

// ProviderSessionCookie is the identity provider's own session cookie. It is
// never written by this application and is immune to consent-driven purge.
const ProviderSessionCookie = "__session"

const markerMaxAge = 86400 * 7 // 7 days

// Marker is the minimal identity the edge gate trusts.
type Marker struct {
	UserID    string
	UserEmail string
	AuthToken string
}

// CookieSink is the write side of cookie state. Satisfied by echo.Context.
type CookieSink interface {
	SetCookie(*http.Cookie)
}

// ReadMarker extracts the Session Marker from request cookies. The second
// return is true only when all three cookies are present and non-empty;
// partial presence is treated as unauthenticated.
func ReadMarker(r *http.Request) (Marker, bool) {
	var m Marker
	if c, err := r.Cookie(CookieUserID); err == nil {
		m.UserID = c.Value
	}
	if c, err := r.Cookie(CookieUserEmail); err == nil {
		m.UserEmail = c.Value
	}
	if c, err := r.Cookie(CookieAuthToken); err == nil {
		m.AuthToken = c.Value
	}
	return m, m.UserID != "" && m.UserEmail != "" && m.AuthToken != ""
}

// WriteMarker sets all three Session Marker cookies.
func WriteMarker(sink CookieSink, m Marker) {
	for name, value := range map[string]string{
		CookieUserID:    m.UserID,
		CookieUserEmail: m.UserEmail,
		CookieAuthToken: m.AuthToken,
	} {
		sink.SetCookie(&http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			MaxAge:   markerMaxAge,
			HttpOnly: true,
			Secure:   false, // Set to true in production with HTTPS
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearMarker expires all three Session Marker cookies.
func ClearMarker(sink CookieSink) {
	for _, name := range []string{CookieUserID, CookieUserEmail, CookieAuthToken} {
		sink.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   false,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
