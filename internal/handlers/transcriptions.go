package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/internal/email"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/beingcrieative/mobmail-sub002/views/helpers"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

// TranscriptionHandler serves the voicemail transcription API: the user-facing
// list/get/delete endpoints and the ingest endpoint used by the telephony
// backend.
type TranscriptionHandler struct {
	storage *storage.Storage
	mailer  *email.Service
	baseURL string
}

// NewTranscriptionHandler builds the handler. mailer may be nil, which
// disables voicemail alert emails.
func NewTranscriptionHandler(store *storage.Storage, mailer *email.Service, baseURL string) *TranscriptionHandler {
	return &TranscriptionHandler{storage: store, mailer: mailer, baseURL: baseURL}
}

type transcriptionJSON struct {
	ID              string    `json:"id"`
	CallerNumber    string    `json:"caller_number,omitempty"`
	CallerName      string    `json:"caller_name,omitempty"`
	DurationSeconds int64     `json:"duration_seconds"`
	Transcript      string    `json:"transcript"`
	Status          string    `json:"status"`
	ReceivedAt      time.Time `json:"received_at"`
}

func toTranscriptionJSON(t db.Transcription) transcriptionJSON {
	return transcriptionJSON{
		ID:              t.ID,
		CallerNumber:    nullStringToString(t.CallerNumber),
		CallerName:      nullStringToString(t.CallerName),
		DurationSeconds: t.DurationSeconds,
		Transcript:      t.Transcript,
		Status:          t.Status,
		ReceivedAt:      t.ReceivedAt,
	}
}

// HandleList returns the signed-in user's transcriptions, newest first.
func (h *TranscriptionHandler) HandleList(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	items, err := h.storage.Queries.ListTranscriptionsByUser(c.Request().Context(), dbUser.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transcriptions")
	}

	list := make([]transcriptionJSON, 0, len(items))
	for _, t := range items {
		list = append(list, toTranscriptionJSON(t))
	}
	return c.JSON(http.StatusOK, map[string]any{"transcriptions": list})
}

// HandleGet returns one transcription. Ownership is checked so a valid
// session cannot read another user's voicemail.
func (h *TranscriptionHandler) HandleGet(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	t, err := h.storage.Queries.GetTranscription(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "Transcription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transcription")
	}
	if t.UserID != dbUser.ID {
		// Same response as not-found so IDs cannot be enumerated.
		return echo.NewHTTPError(http.StatusNotFound, "Transcription not found")
	}
	return c.JSON(http.StatusOK, toTranscriptionJSON(t))
}

// HandleDelete removes one of the signed-in user's transcriptions.
func (h *TranscriptionHandler) HandleDelete(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	ctx := c.Request().Context()
	t, err := h.storage.Queries.GetTranscription(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "Transcription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch transcription")
	}
	if t.UserID != dbUser.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Transcription not found")
	}

	if err := h.storage.Queries.DeleteTranscription(ctx, t.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete transcription")
	}
	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

type ingestRequest struct {
	UserEmail       string `json:"user_email"`
	CallerNumber    string `json:"caller_number"`
	CallerName      string `json:"caller_name"`
	DurationSeconds int64  `json:"duration_seconds"`
	Transcript      string `json:"transcript"`
	Status          string `json:"status"`
}

// HandleIngest accepts a finished transcription from the telephony backend.
// Mounted behind API key auth, not session auth: the caller is a machine,
// not a browser.
func (h *TranscriptionHandler) HandleIngest(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.UserEmail == "" || req.Transcript == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_email and transcript are required")
	}
	if req.Status == "" {
		req.Status = "completed"
	}

	ctx := c.Request().Context()
	user, err := h.storage.Queries.GetUserByEmail(ctx, req.UserEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "No user with that email")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to look up user")
	}

	t, err := h.storage.Queries.CreateTranscription(ctx, db.CreateTranscriptionParams{
		ID:              ulid.Make().String(),
		UserID:          user.ID,
		CallerNumber:    toNullString(req.CallerNumber),
		CallerName:      toNullString(req.CallerName),
		DurationSeconds: req.DurationSeconds,
		Transcript:      req.Transcript,
		Status:          req.Status,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store transcription")
	}

	// A voicemail landing is the one event users always want to hear about.
	if _, err := h.storage.Queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID:     ulid.Make().String(),
		UserID: user.ID,
		Kind:   "voicemail",
		Title:  "New voicemail",
		Body:   notificationBody(req.CallerName, req.CallerNumber),
	}); err != nil {
		// The transcription is already stored; a missing notification is
		// not worth failing the ingest over.
		slog.Warn("failed to create voicemail notification", "user_id", user.ID, "error", err)
	}

	if h.mailer != nil && h.mailer.Enabled() {
		// Delivery can take seconds over SMTP; the ingest response must not
		// wait on it.
		go h.sendVoicemailAlert(user, t)
	}

	return c.JSON(http.StatusCreated, toTranscriptionJSON(t))
}

func (h *TranscriptionHandler) sendVoicemailAlert(user db.User, t db.Transcription) {
	data := &email.VoicemailAlertData{
		RecipientName: nullStringToString(user.Name),
		CallerName:    nullStringToString(t.CallerName),
		CallerNumber:  nullStringToString(t.CallerNumber),
		Duration:      helpers.FormatDuration(t.DurationSeconds),
		ReceivedAt:    helpers.FormatDateTime(t.ReceivedAt),
		Excerpt:       excerpt(t.Transcript, 140),
		DashboardURL:  h.baseURL + "/mobile-v3",
	}

	if err := h.mailer.SendVoicemailAlert(user.Email, data); err != nil {
		slog.Warn("failed to send voicemail alert email", "user_id", user.ID, "error", err)
	}
}

// excerpt trims a transcript to at most n runes for previews. Counting
// runes keeps a multi-byte character from being cut in half.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "…"
	}
	return s
}

func notificationBody(callerName, callerNumber string) string {
	switch {
	case callerName != "":
		return "New voicemail from " + callerName
	case callerNumber != "":
		return "New voicemail from " + callerNumber
	default:
		return "New voicemail from an unknown caller"
	}
}
