package gate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"

func newGatedEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(DefaultConfig()))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }

	e.GET("/", ok)
	e.GET("/login", ok)
	e.GET("/register", ok)
	e.GET("/pricing", ok)
	e.GET("/mobile-v3", ok)
	e.GET("/mobile-v3/profile", ok)
	e.GET("/api/transcriptions", ok)
	e.POST("/api/auth/login", ok)
	e.POST("/api/payments/webhook", ok)
	e.POST("/contact/submit", ok)
	return e
}

type reqOpt func(*http.Request)

func withCookies(m map[string]string) reqOpt {
	return func(r *http.Request) {
		for name, value := range m {
			r.AddCookie(&http.Cookie{Name: name, Value: value})
		}
	}
}

func withHeader(name, value string) reqOpt {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func withoutUA() reqOpt {
	return func(r *http.Request) { r.Header.Del("User-Agent") }
}

func do(e *echo.Echo, method, path string, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("User-Agent", testUA)
	req.Host = "example.com"
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func fullMarker() map[string]string {
	return map[string]string{
		session.CookieUserID:    "u1",
		session.CookieUserEmail: "a@b.com",
		session.CookieAuthToken: "tok",
	}
}

func TestUserAgentSanity(t *testing.T) {
	e := newGatedEcho()

	tests := []struct {
		name string
		path string
		opts []reqOpt
		want int
	}{
		{"missing UA on public page", "/pricing", []reqOpt{withoutUA()}, http.StatusForbidden},
		{"missing UA on api path", "/api/transcriptions", []reqOpt{withoutUA()}, http.StatusForbidden},
		{"missing UA on dashboard", "/mobile-v3", []reqOpt{withoutUA()}, http.StatusForbidden},
		{"oversized UA", "/pricing", []reqOpt{withHeader("User-Agent", strings.Repeat("x", 501))}, http.StatusForbidden},
		{"UA at the limit", "/pricing", []reqOpt{withHeader("User-Agent", strings.Repeat("x", 500))}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, tt.path, tt.opts...)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMutatingRequestsRequireSameOriginReferer(t *testing.T) {
	e := newGatedEcho()

	tests := []struct {
		name string
		opts []reqOpt
		want int
	}{
		{"no referer", nil, http.StatusForbidden},
		{"cross-origin referer", []reqOpt{withHeader("Referer", "https://evil.test/phish")}, http.StatusForbidden},
		{"malformed referer", []reqOpt{withHeader("Referer", "://bad%%url")}, http.StatusForbidden},
		{"relative referer", []reqOpt{withHeader("Referer", "/contact")}, http.StatusForbidden},
		{"same-origin referer", []reqOpt{withHeader("Referer", "http://example.com/contact")}, http.StatusOK},
		// Host-only comparison: the proxy terminates TLS, so the browser's
		// https referer still matches the plain-http request host.
		{"same host behind TLS proxy", []reqOpt{withHeader("Referer", "https://example.com/contact")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/auth/login", tt.opts...)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("GET never needs a referer", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/pricing")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAPIPathsGetSecurityHeaders(t *testing.T) {
	e := newGatedEcho()

	rec := do(e, http.MethodGet, "/api/transcriptions")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestAPIPathsBypassAllowList(t *testing.T) {
	e := newGatedEcho()

	// An API path never triggers the unknown-path redirect, even without
	// any marker cookies.
	rec := do(e, http.MethodGet, "/api/transcriptions")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownPathRedirectsBeforeAuthCheck(t *testing.T) {
	e := newGatedEcho()

	// Identical outcome with and without the marker: the redirect must not
	// leak authentication state.
	anon := do(e, http.MethodGet, "/wp-admin")
	authed := do(e, http.MethodGet, "/wp-admin", withCookies(fullMarker()))

	assert.Equal(t, http.StatusFound, anon.Code)
	assert.Equal(t, "/mobile-v3", anon.Header().Get("Location"))
	assert.Equal(t, anon.Code, authed.Code)
	assert.Equal(t, anon.Header().Get("Location"), authed.Header().Get("Location"))
}

func TestDashboardRequiresFullMarker(t *testing.T) {
	e := newGatedEcho()

	tests := []struct {
		name    string
		cookies map[string]string
		want    int
		wantLoc string
	}{
		{"no cookies", nil, http.StatusFound, "/login"},
		{"full marker", fullMarker(), http.StatusOK, ""},
		{
			"missing authToken",
			map[string]string{session.CookieUserID: "u1", session.CookieUserEmail: "a@b.com"},
			http.StatusFound, "/login",
		},
		{
			"missing userId",
			map[string]string{session.CookieUserEmail: "a@b.com", session.CookieAuthToken: "tok"},
			http.StatusFound, "/login",
		},
		{
			"missing userEmail",
			map[string]string{session.CookieUserID: "u1", session.CookieAuthToken: "tok"},
			http.StatusFound, "/login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/mobile-v3/profile", withCookies(tt.cookies))
			assert.Equal(t, tt.want, rec.Code)
			if tt.wantLoc != "" {
				assert.Equal(t, tt.wantLoc, rec.Header().Get("Location"))
			}
		})
	}
}

func TestAuthenticatedVisitorsSkipAuthPages(t *testing.T) {
	e := newGatedEcho()

	for _, path := range []string{"/login", "/register"} {
		rec := do(e, http.MethodGet, path, withCookies(fullMarker()))
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/mobile-v3", rec.Header().Get("Location"), path)
	}

	// Unauthenticated visitors reach them normally.
	rec := do(e, http.MethodGet, "/login")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPublicPagesPassThrough(t *testing.T) {
	e := newGatedEcho()

	for _, path := range []string{"/", "/pricing"} {
		rec := do(e, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

// The end-to-end marker lifecycle: denied without cookies, passes once the
// gateway has written all three.
func TestDashboardAccessAfterLogin(t *testing.T) {
	e := newGatedEcho()

	before := do(e, http.MethodGet, "/mobile-v3/profile")
	assert.Equal(t, http.StatusFound, before.Code)
	assert.Equal(t, "/login", before.Header().Get("Location"))

	after := do(e, http.MethodGet, "/mobile-v3/profile", withCookies(fullMarker()))
	assert.Equal(t, http.StatusOK, after.Code)
}

func TestMachineEndpointsBypassGate(t *testing.T) {
	e := newGatedEcho()

	// Stripe never sends a Referer and its User-Agent is nothing like a
	// browser's. The webhook must still get through.
	rec := do(e, http.MethodPost, "/api/payments/webhook",
		withHeader("User-Agent", "Stripe/1.0 (+https://stripe.com/docs/webhooks)"))
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("bypass is prefix-scoped", func(t *testing.T) {
		// A sibling API path still goes through the referer rule.
		rec := do(e, http.MethodPost, "/api/auth/login")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
