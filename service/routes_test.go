package service

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Safari/604.1"

func doRequest(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("User-Agent", testUserAgent)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// TestPublicRoutes verifies that every public page resolves.
func TestPublicRoutes(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Home page", "GET", "/", http.StatusOK},
		{"Features page", "GET", "/features", http.StatusOK},
		{"Pricing page", "GET", "/pricing", http.StatusOK},
		{"About page", "GET", "/about", http.StatusOK},
		{"Contact page", "GET", "/contact", http.StatusOK},
		{"Privacy policy", "GET", "/privacy", http.StatusOK},
		{"Terms of service", "GET", "/terms", http.StatusOK},
		{"Login page", "GET", "/login", http.StatusOK},
		{"Register page", "GET", "/register", http.StatusOK},
		{"Forgot password page", "GET", "/forgot-password", http.StatusOK},
		{"Health check", "GET", "/health", http.StatusOK},
		{"Metrics", "GET", "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, tt.method, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code,
				"Route %s %s should return %d, got %d",
				tt.method, tt.path, tt.wantStatus, rec.Code)
		})
	}
}

// TestDashboardRequiresSession verifies the dashboard bounces anonymous
// visitors to the login page.
func TestDashboardRequiresSession(t *testing.T) {
	e, _ := setupTestEcho(t)

	for _, path := range []string{"/mobile-v3", "/mobile-v3/profile", "/mobile-v3/settings"} {
		rec := doRequest(e, http.MethodGet, path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
}

// TestUnknownPathRedirects verifies the catch-all redirect to the dashboard
// root.
func TestUnknownPathRedirects(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doRequest(e, http.MethodGet, "/definitely-not-a-page")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/mobile-v3", rec.Header().Get("Location"))
}

// TestAPIRequiresAuthentication verifies user-scoped API routes reject
// anonymous callers instead of redirecting them.
func TestAPIRequiresAuthentication(t *testing.T) {
	e, _ := setupTestEcho(t)

	tests := []struct {
		method string
		path   string
	}{
		{"GET", "/api/users/me"},
		{"GET", "/api/transcriptions"},
		{"GET", "/api/notifications"},
		{"GET", "/api/payments/subscription"},
	}

	for _, tt := range tests {
		rec := doRequest(e, tt.method, tt.path)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tt.method, tt.path)
	}
}

// TestAuthStatusIsPublic verifies /api/auth/status answers anonymous callers
// with 200.
func TestAuthStatusIsPublic(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doRequest(e, http.MethodGet, "/api/auth/status")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestMutatingRoutesNeedReferer verifies the gate's cross-origin protection
// covers form posts.
func TestMutatingRoutesNeedReferer(t *testing.T) {
	e, _ := setupTestEcho(t)

	rec := doRequest(e, http.MethodPost, "/contact/submit")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// TestIngestRequiresAPIKey verifies the machine endpoint rejects callers
// without a key even though it bypasses the browser gate.
func TestIngestRequiresAPIKey(t *testing.T) {
	e, _ := setupTestEcho(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/transcriptions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
