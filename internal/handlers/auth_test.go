package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/authstate"
	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	signInErr  error
	signOutErr error
	profile    *session.Profile
}

func (p *stubProvider) session() *gateway.ProviderSession {
	return &gateway.ProviderSession{Token: "tok-1", Profile: p.profile}
}

func (p *stubProvider) SignIn(ctx context.Context, creds gateway.Credentials) (*gateway.ProviderSession, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	return p.session(), nil
}

func (p *stubProvider) SignUp(ctx context.Context, reg gateway.Registration) (*gateway.ProviderSession, error) {
	return p.session(), nil
}

func (p *stubProvider) SignOut(ctx context.Context, token string) error {
	return p.signOutErr
}

func (p *stubProvider) CurrentSession(ctx context.Context, token string) (*gateway.ProviderSession, error) {
	if token == "" {
		return nil, gateway.ErrNoSession
	}
	return p.session(), nil
}

func (p *stubProvider) Refresh(ctx context.Context, token string) (*gateway.ProviderSession, error) {
	if token == "" {
		return nil, gateway.ErrNoSession
	}
	return p.session(), nil
}

func (p *stubProvider) RequestPasswordReset(ctx context.Context, email string) error { return nil }

func (p *stubProvider) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	return nil
}

func newAuthHandler(provider *stubProvider) *AuthHandler {
	gw := gateway.New(provider, time.Second)
	sm := session.NewManager("test-secret")
	return NewAuthHandler(gw, sm)
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandleLoginSuccessWritesMarkerCookies(t *testing.T) {
	provider := &stubProvider{profile: &session.Profile{ID: "u-1", Email: "kim@example.com"}}
	h := newAuthHandler(provider)

	c, rec := NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "kim@example.com",
		"password": "hunter2",
	})

	require.NoError(t, h.HandleLogin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, true, body["success"])

	for _, name := range []string{session.CookieUserID, session.CookieUserEmail, session.CookieAuthToken} {
		cookie := cookieByName(rec, name)
		require.NotNil(t, cookie, "missing cookie %s", name)
		assert.NotEmpty(t, cookie.Value)
	}
}

func TestHandleLoginFailureIsNormalized(t *testing.T) {
	provider := &stubProvider{signInErr: errors.New("clerk: 422 form_password_incorrect")}
	h := newAuthHandler(provider)

	c, rec := NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "kim@example.com",
		"password": "wrong",
	})

	require.NoError(t, h.HandleLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid email or password", body["error"])
	assert.NotContains(t, body["error"], "clerk")

	assert.Nil(t, cookieByName(rec, session.CookieUserID))
}

func TestHandleLoginRejectsMissingFields(t *testing.T) {
	h := newAuthHandler(&stubProvider{})

	c, rec := NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{"email": "kim@example.com"})

	require.NoError(t, h.HandleLogin(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLogoutClearsMarkersEvenWhenProviderFails(t *testing.T) {
	provider := &stubProvider{
		profile:    &session.Profile{ID: "u-1", Email: "kim@example.com"},
		signOutErr: errors.New("provider unavailable"),
	}
	h := newAuthHandler(provider)

	c, rec := NewTestContext(http.MethodPost, "/api/auth/logout", nil)
	c.Request().AddCookie(&http.Cookie{Name: session.CookieAuthToken, Value: "tok-1"})

	require.NoError(t, h.HandleLogout(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, name := range []string{session.CookieUserID, session.CookieUserEmail, session.CookieAuthToken} {
		cookie := cookieByName(rec, name)
		require.NotNil(t, cookie, "missing clearing cookie %s", name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}

func TestHandleStatusAnonymousIsOK(t *testing.T) {
	h := newAuthHandler(&stubProvider{profile: &session.Profile{ID: "u-1", Email: "kim@example.com"}})

	c, rec := NewTestContext(http.MethodGet, "/api/auth/status", nil)

	require.NoError(t, h.HandleStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, authstate.ErrCheckFailed, body["error"])
}

func TestHandleStatusAfterLoginReportsAuthenticated(t *testing.T) {
	provider := &stubProvider{profile: &session.Profile{ID: "u-1", Email: "kim@example.com"}}
	h := newAuthHandler(provider)

	c, rec := NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "kim@example.com",
		"password": "hunter2",
	})
	require.NoError(t, h.HandleLogin(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// A follow-up status check carrying the cookies login just set must
	// reconcile to the logged-in user, not to a failed check.
	c2, rec2 := NewTestContext(http.MethodGet, "/api/auth/status", nil)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Value != "" {
			c2.Request().AddCookie(cookie)
		}
	}

	require.NoError(t, h.HandleStatus(c2))
	assert.Equal(t, http.StatusOK, rec2.Code)

	body, err := AssertJSONResponse(rec2)
	require.NoError(t, err)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["error"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "expected user object in response")
	assert.Equal(t, "u-1", user["id"])
}

func TestHandleConsentDeclinedPurgesTracking(t *testing.T) {
	h := newAuthHandler(&stubProvider{})

	c, rec := NewTestContext(http.MethodPost, "/api/consent", map[string]string{"choice": "declined"})
	c.Request().AddCookie(&http.Cookie{Name: "marketingPixelId", Value: "px-1"})
	c.Request().AddCookie(&http.Cookie{Name: session.CookieUserID, Value: "u-1"})

	require.NoError(t, h.HandleConsent(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	pixel := cookieByName(rec, "marketingPixelId")
	require.NotNil(t, pixel)
	assert.Negative(t, pixel.MaxAge)

	// Essential auth cookies survive a decline.
	assert.Nil(t, cookieByName(rec, session.CookieUserID))
}

func TestHandleConsentRejectsUnknownChoice(t *testing.T) {
	h := newAuthHandler(&stubProvider{})

	c, rec := NewTestContext(http.MethodPost, "/api/consent", map[string]string{"choice": "maybe"})

	require.NoError(t, h.HandleConsent(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
