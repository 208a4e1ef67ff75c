package auth

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/beingcrieative/mobmail-sub002/internal/authstate"
	"github.com/beingcrieative/mobmail-sub002/internal/gateway"
	"github.com/beingcrieative/mobmail-sub002/internal/session"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LoadAuth populates the request context with the authenticated identity.
// The cheap path is the profile session cookie; a userId marker it no longer
// matches, or a missing profile session, sends the request through the
// auth-state store bound to this request's cookies. Requests that reconcile
// to anonymous continue as unauthenticated.
func LoadAuth(sessionMgr *session.Manager, gw *gateway.Gateway, store *storage.Storage) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			st := authstate.New(gw.Bind(c.Request(), c))

			profile := cachedProfile(c, sessionMgr, st)
			if profile == nil {
				state := st.CheckAuthStatus(c.Request().Context())
				if !state.IsLoggedIn {
					c.Set(IsAuthenticatedKey, false)
					return next(c)
				}
				profile = state.User
				if err := sessionMgr.SaveProfile(c, profile); err != nil {
					slog.Warn("failed to save profile session", "error", err, "path", path)
				}
				slog.Debug("session re-established from provider", "path", path, "user_id", profile.ID)
			}

			dbUser, err := syncUser(c.Request().Context(), store, profile)
			if err != nil {
				slog.Error("failed to sync user", "error", err, "path", path)
				c.Set(IsAuthenticatedKey, false)
				return next(c)
			}

			c.Set(ProfileKey, profile)
			c.Set(DBUserKey, dbUser)
			c.Set(IsAuthenticatedKey, true)
			return next(c)
		}
	}
}

// cachedProfile returns the profile session when it is still trustworthy.
// A userId marker that no longer names the cached user means another tab
// changed accounts; the marker change is replayed into the store and the
// reconciled state replaces the stale cache.
func cachedProfile(c echo.Context, sessionMgr *session.Manager, st *authstate.Store) *session.Profile {
	profile, err := sessionMgr.GetProfile(c)
	if err != nil || profile == nil {
		return nil
	}
	marker, ok := session.ReadMarker(c.Request())
	if !ok || marker.UserID == profile.ID {
		return profile
	}

	st.NotifyMarkerChange(c.Request().Context(), session.CookieUserID)
	state := st.Snapshot()
	if !state.IsLoggedIn {
		return nil
	}
	if err := sessionMgr.SaveProfile(c, state.User); err != nil {
		slog.Warn("failed to save profile session after marker change", "error", err)
	}
	return state.User
}

// RequireAuth redirects unauthenticated page requests to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			isAuth, _ := c.Get(IsAuthenticatedKey).(bool)
			if !isAuth {
				return c.Redirect(http.StatusFound, "/login")
			}
			return next(c)
		}
	}
}

// syncUser upserts the provider identity into the local users table.
func syncUser(ctx context.Context, store *storage.Storage, profile *session.Profile) (*db.User, error) {
	existing, err := store.Queries.GetUserByClerkID(ctx, toNullString(profile.ID))
	userID := uuid.NewString()
	if err == nil {
		userID = existing.ID
	}

	dbUser, err := store.Queries.UpsertUserByClerkID(ctx, db.UpsertUserByClerkIDParams{
		ID:      userID,
		ClerkID: toNullString(profile.ID),
		Email:   profile.Email,
		Name:    toNullString(profile.Name),
		Company: toNullString(profile.Company),
		Phone:   toNullString(profile.Phone),
	})
	if err != nil {
		return nil, err
	}
	return &dbUser, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
