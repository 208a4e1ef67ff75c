package handlers

import (
	"net/http"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
)

// NotificationHandler serves the in-app notification feed.
type NotificationHandler struct {
	storage *storage.Storage
}

func NewNotificationHandler(store *storage.Storage) *NotificationHandler {
	return &NotificationHandler{storage: store}
}

type notificationJSON struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationJSON(n db.Notification) notificationJSON {
	return notificationJSON{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// HandleList returns the signed-in user's notifications, newest first.
func (h *NotificationHandler) HandleList(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	items, err := h.storage.Queries.ListNotificationsByUser(c.Request().Context(), dbUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	list := make([]notificationJSON, 0, len(items))
	unread := 0
	for _, n := range items {
		if !n.Read {
			unread++
		}
		list = append(list, toNotificationJSON(n))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"notifications": list,
		"unread":        unread,
	})
}

// HandleMarkRead marks one notification as read. Marking an already-read or
// foreign notification is a no-op rather than an error.
func (h *NotificationHandler) HandleMarkRead(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	// Scope the write to the caller's own rows.
	items, err := h.storage.Queries.ListNotificationsByUser(ctx, dbUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}
	owned := false
	for _, n := range items {
		if n.ID == id {
			owned = true
			break
		}
	}
	if owned {
		if err := h.storage.Queries.MarkNotificationRead(ctx, id); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to mark notification read")
		}
	}
	return c.JSON(http.StatusOK, map[string]bool{"read": owned})
}
