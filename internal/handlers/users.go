package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
)

// UserHandler serves the profile API for the signed-in user.
type UserHandler struct {
	storage *storage.Storage
}

func NewUserHandler(store *storage.Storage) *UserHandler {
	return &UserHandler{storage: store}
}

type userJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Company   string    `json:"company,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserJSON(u db.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		Name:      nullStringToString(u.Name),
		Company:   nullStringToString(u.Company),
		Phone:     nullStringToString(u.Phone),
		Notes:     nullStringToString(u.Notes),
		CreatedAt: u.CreatedAt,
	}
}

// HandleGetMe returns the signed-in user's profile.
func (h *UserHandler) HandleGetMe(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return c.JSON(http.StatusOK, toUserJSON(*dbUser))
}

type updateMeRequest struct {
	Name    string `json:"name" form:"name"`
	Company string `json:"company" form:"company"`
	Phone   string `json:"phone" form:"phone"`
	Notes   string `json:"notes" form:"notes"`
}

// HandleUpdateMe updates the signed-in user's editable profile fields.
// Email and identity are owned by the provider and cannot change here.
func (h *UserHandler) HandleUpdateMe(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	var req updateMeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	updated, err := h.storage.Queries.UpdateUserProfile(c.Request().Context(), db.UpdateUserProfileParams{
		ID:      dbUser.ID,
		Name:    toNullString(req.Name),
		Company: toNullString(req.Company),
		Phone:   toNullString(req.Phone),
		Notes:   toNullString(req.Notes),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}
	return c.JSON(http.StatusOK, toUserJSON(updated))
}

// Helper functions
func nullStringToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
