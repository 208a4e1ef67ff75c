package auth

import (
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
)

// Context keys for auth data populated by LoadAuth.
const (
	ProfileKey         = "auth_profile"
	DBUserKey          = "db_user"
	IsAuthenticatedKey = "is_authenticated"
)

// Context holds authentication data for page rendering.
type Context struct {
	IsAuthenticated bool
	User            *session.Profile
}

// GetAuthContext returns the auth context for the current request.
func GetAuthContext(c echo.Context) *Context {
	isAuth, _ := c.Get(IsAuthenticatedKey).(bool)
	if !isAuth {
		return &Context{}
	}

	profile, ok := c.Get(ProfileKey).(*session.Profile)
	if !ok || profile == nil {
		return &Context{}
	}

	return &Context{
		IsAuthenticated: true,
		User:            profile,
	}
}

// GetProfile retrieves the cached identity profile from the context.
func GetProfile(c echo.Context) (*session.Profile, bool) {
	profile, ok := c.Get(ProfileKey).(*session.Profile)
	return profile, ok && profile != nil
}

// GetDBUser retrieves the database user from the context.
func GetDBUser(c echo.Context) (*db.User, bool) {
	dbUser, ok := c.Get(DBUserKey).(*db.User)
	return dbUser, ok && dbUser != nil
}

// IsAuthenticated checks if the current request is authenticated.
func IsAuthenticated(c echo.Context) bool {
	isAuth, _ := c.Get(IsAuthenticatedKey).(bool)
	return isAuth
}

// GetUserID gets the local user ID, preferring the database row.
func GetUserID(c echo.Context) (string, bool) {
	if dbUser, ok := GetDBUser(c); ok {
		return dbUser.ID, true
	}
	if profile, ok := GetProfile(c); ok {
		return profile.ID, true
	}
	return "", false
}

// RequireUser returns 401 when the request carries no authenticated user.
// Use in API handlers that need auth.
func RequireUser(c echo.Context) error {
	if !IsAuthenticated(c) {
		return echo.NewHTTPError(401, "Authentication required")
	}
	return nil
}
