package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/beingcrieative/mobmail-sub002/internal/email"
	"github.com/beingcrieative/mobmail-sub002/internal/recaptcha"
	"github.com/beingcrieative/mobmail-sub002/storage"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

// SubmissionHandler stores contact form submissions.
type SubmissionHandler struct {
	storage *storage.Storage
	mailer  *email.Service
}

// NewSubmissionHandler builds the handler. mailer may be nil, which disables
// the team inbox notification.
func NewSubmissionHandler(store *storage.Storage, mailer *email.Service) *SubmissionHandler {
	return &SubmissionHandler{storage: store, mailer: mailer}
}

type submissionRequest struct {
	Name           string `json:"name" form:"name"`
	Email          string `json:"email" form:"email"`
	Phone          string `json:"phone" form:"phone"`
	Message        string `json:"message" form:"message"`
	RecaptchaToken string `json:"recaptcha_token" form:"g-recaptcha-response"`
}

// HandleSubmit stores a contact form submission. Open to anonymous visitors.
func (h *SubmissionHandler) HandleSubmit(c echo.Context) error {
	var req submissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name, email, and message are required")
	}
	if !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email address")
	}

	if recaptcha.Enabled() {
		valid, score, err := recaptcha.IsValid(req.RecaptchaToken)
		if err != nil {
			slog.Error("recaptcha verification error", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "reCAPTCHA verification failed")
		}
		if !valid {
			slog.Debug("recaptcha verification failed", "score", score)
			return echo.NewHTTPError(http.StatusBadRequest, "reCAPTCHA verification failed")
		}
	}

	sub, err := h.storage.Queries.CreateSubmission(c.Request().Context(), db.CreateSubmissionParams{
		ID:      ulid.Make().String(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   toNullString(strings.TrimSpace(req.Phone)),
		Message: req.Message,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store submission")
	}

	if h.mailer != nil && h.mailer.Enabled() {
		go func() {
			if err := h.mailer.SendContactNotification(&email.ContactData{
				Name:    req.Name,
				Email:   req.Email,
				Phone:   strings.TrimSpace(req.Phone),
				Message: req.Message,
			}); err != nil {
				slog.Warn("failed to forward contact submission", "id", sub.ID, "error", err)
			}
		}()
	}

	slog.Info("contact submission received", "id", sub.ID, "email", sub.Email)
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "id": sub.ID})
}
