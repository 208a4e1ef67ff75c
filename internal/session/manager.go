package session

import (
	"encoding/gob"
	"fmt"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "mobmail_session"
	profileKey  = "profile"
)

// Profile is the richer cached identity kept alongside the Session Marker.
// It mirrors what the identity provider knows about the user so dashboard
// pages can render without a provider round-trip.
type Profile struct {
	ID       string
	Email    string
	Name     string
	Company  string
	Phone    string
	Metadata map[string]string
}

// Manager manages the server-side profile session. Writes go exclusively
// through the auth gateway so the cached profile and the Session Marker
// cannot diverge.
type Manager struct {
	store sessions.Store
}

// NewManager creates a new session manager
func NewManager(secret string) *Manager {
	// Register Profile type for gob encoding
	gob.Register(&Profile{})

	store := sessions.NewCookieStore([]byte(secret))

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: 2,     // Lax mode
	}

	return &Manager{
		store: store,
	}
}

// SaveProfile stores the user profile in the session
func (m *Manager) SaveProfile(c echo.Context, p *Profile) error {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	session.Values[profileKey] = p

	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// GetProfile retrieves the user profile from the session
func (m *Manager) GetProfile(c echo.Context) (*Profile, error) {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	p, ok := session.Values[profileKey].(*Profile)
	if !ok || p == nil {
		return nil, fmt.Errorf("no profile in session")
	}

	return p, nil
}

// ClearProfile removes the profile session
func (m *Manager) ClearProfile(c echo.Context) error {
	session, err := m.store.Get(c.Request(), sessionName)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	session.Options.MaxAge = -1
	delete(session.Values, profileKey)

	if err := session.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	return nil
}
