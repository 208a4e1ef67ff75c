package session

import "net/http"

// CookieConsent stores the visitor's cookie consent choice.
const CookieConsent = "cookieConsent"

// Consent is the stored user choice governing non-essential client storage.
type Consent string

const (
	ConsentAccepted Consent = "accepted"
	ConsentDeclined Consent = "declined"
	ConsentUnset    Consent = ""
)

// essentialCookies are never removed by a consent-driven purge: the three
// Session Marker cookies, the identity provider's own session cookie, and
// the consent record itself.
var essentialCookies = map[string]bool{
	CookieUserID:          true,
	CookieUserEmail:       true,
	CookieAuthToken:       true,
	ProviderSessionCookie: true,
	CookieConsent:         true,
}

// ReadConsent returns the visitor's consent choice, or ConsentUnset when no
// valid record exists.
func ReadConsent(r *http.Request) Consent {
	c, err := r.Cookie(CookieConsent)
	if err != nil {
		return ConsentUnset
	}
	switch Consent(c.Value) {
	case ConsentAccepted:
		return ConsentAccepted
	case ConsentDeclined:
		return ConsentDeclined
	}
	return ConsentUnset
}

// SetConsent records the visitor's choice. Declining additionally purges
// every non-essential cookie present on the request.
func SetConsent(r *http.Request, sink CookieSink, choice Consent) {
	sink.SetCookie(&http.Cookie{
		Name:     CookieConsent,
		Value:    string(choice),
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: false, // readable by the consent banner
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})

	if choice == ConsentDeclined {
		PurgeNonEssential(r, sink)
	}
}

// PurgeNonEssential expires every request cookie not on the essential
// allow-list.
func PurgeNonEssential(r *http.Request, sink CookieSink) {
	for _, c := range r.Cookies() {
		if essentialCookies[c.Name] {
			continue
		}
		sink.SetCookie(&http.Cookie{
			Name:     c.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   false,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
