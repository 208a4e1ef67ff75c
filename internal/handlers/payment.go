package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/beingcrieative/mobmail-sub002/internal/auth"
	"github.com/beingcrieative/mobmail-sub002/internal/billing"
	"github.com/beingcrieative/mobmail-sub002/storage/db"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
	stripego "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/webhook"
)

// PaymentHandler serves subscription checkout and the Stripe webhook.
type PaymentHandler struct {
	billing *billing.Service
	queries *db.Queries
}

func NewPaymentHandler(billingService *billing.Service, queries *db.Queries) *PaymentHandler {
	return &PaymentHandler{
		billing: billingService,
		queries: queries,
	}
}

// HandleCreateCheckout starts a subscription checkout for the signed-in user
// and returns the hosted checkout URL.
func (h *PaymentHandler) HandleCreateCheckout(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	sess, err := h.billing.CreateCheckoutSession(dbUser.ID, dbUser.Email)
	if err != nil {
		slog.Error("failed to create checkout session", "user_id", dbUser.ID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start checkout")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"checkout_url": sess.URL,
		"session_id":   sess.ID,
	})
}

// HandleGetCheckoutSession reports the status of a checkout session the user
// was sent to, so the settings page can confirm the purchase landed.
func (h *PaymentHandler) HandleGetCheckoutSession(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	sess, err := h.billing.GetCheckoutSession(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Checkout session not found")
	}
	// Same response as not-found: one user's session ids are not another's
	// to inspect.
	if sess.ClientReferenceID != dbUser.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Checkout session not found")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":             sess.ID,
		"status":         sess.Status,
		"payment_status": sess.PaymentStatus,
	})
}

// HandleGetSubscription returns the signed-in user's subscription, if any.
func (h *PaymentHandler) HandleGetSubscription(c echo.Context) error {
	if err := auth.RequireUser(c); err != nil {
		return err
	}
	dbUser, ok := auth.GetDBUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	sub, err := h.queries.GetSubscriptionByUser(c.Request().Context(), dbUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusOK, map[string]any{"subscription": nil})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch subscription")
	}

	resp := map[string]any{
		"plan":   sub.Plan,
		"status": sub.Status,
	}
	if sub.CurrentPeriodEnd.Valid {
		resp["current_period_end"] = sub.CurrentPeriodEnd.Time
	}
	return c.JSON(http.StatusOK, map[string]any{"subscription": resp})
}

func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body too large")
	}

	endpointSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	signatureHeader := c.Request().Header.Get("Stripe-Signature")

	// Allow webhook processing without signature verification if webhook secret is not configured
	var event stripego.Event
	if endpointSecret != "" {
		event, err = webhook.ConstructEvent(payload, signatureHeader, endpointSecret)
		if err != nil {
			slog.Error("webhook signature verification failed", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid signature")
		}
	} else {
		// For development/testing: parse event without verification
		if err := json.Unmarshal(payload, &event); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Error parsing webhook JSON")
		}
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripego.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			slog.Error("error parsing checkout session", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Error parsing webhook JSON")
		}
		if err := h.handleCheckoutCompleted(c, &sess); err != nil {
			slog.Error("error handling checkout completed", "error", err)
			// Don't return error to Stripe - we'll log it and let them retry
		}

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripego.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Error parsing webhook JSON")
		}
		if err := h.handleSubscriptionChanged(c, &sub); err != nil {
			slog.Error("error handling subscription change", "error", err)
		}

	case "invoice.payment_failed":
		var invoice stripego.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Error parsing webhook JSON")
		}
		slog.Warn("invoice payment failed", "invoice_id", invoice.ID)
		h.notifyPaymentFailed(c, &invoice)

	default:
		slog.Debug("unhandled webhook event type", "type", event.Type)
	}

	return c.NoContent(http.StatusOK)
}

func (h *PaymentHandler) handleCheckoutCompleted(c echo.Context, sess *stripego.CheckoutSession) error {
	ctx := c.Request().Context()

	userID := sess.ClientReferenceID
	if userID == "" {
		slog.Warn("checkout session has no client reference", "session_id", sess.ID)
		return nil
	}

	slog.Info("handling checkout completed",
		"session_id", sess.ID,
		"user_id", userID,
		"amount_total", sess.AmountTotal)

	params := db.UpsertSubscriptionParams{
		ID:     ulid.Make().String(),
		UserID: userID,
		Plan:   "unlimited",
		Status: "active",
	}
	if sess.Customer != nil {
		params.StripeCustomerID = sql.NullString{String: sess.Customer.ID, Valid: true}
	}
	if sess.Subscription != nil {
		params.StripeSubscriptionID = sql.NullString{String: sess.Subscription.ID, Valid: true}
	}

	if _, err := h.queries.UpsertSubscription(ctx, params); err != nil {
		return err
	}

	if _, err := h.queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID:     ulid.Make().String(),
		UserID: userID,
		Kind:   "billing",
		Title:  "Subscription active",
		Body:   "Your MobMail subscription is active. Voicemails will be transcribed from now on.",
	}); err != nil {
		slog.Error("failed to create subscription notification", "error", err)
	}
	return nil
}

func (h *PaymentHandler) handleSubscriptionChanged(c echo.Context, sub *stripego.Subscription) error {
	ctx := c.Request().Context()

	userID := sub.Metadata["user_id"]
	if userID == "" {
		// Fall back to the local row keyed by the Stripe subscription ID.
		existing, err := h.queries.GetSubscriptionByStripeID(ctx, sql.NullString{String: sub.ID, Valid: true})
		if err != nil {
			slog.Warn("subscription event for unknown subscription", "subscription_id", sub.ID)
			return nil
		}
		userID = existing.UserID
	}

	params := db.UpsertSubscriptionParams{
		ID:                   ulid.Make().String(),
		UserID:               userID,
		StripeSubscriptionID: sql.NullString{String: sub.ID, Valid: true},
		Plan:                 "unlimited",
		Status:               string(sub.Status),
	}
	if sub.Customer != nil {
		params.StripeCustomerID = sql.NullString{String: sub.Customer.ID, Valid: true}
	}
	if sub.CurrentPeriodEnd > 0 {
		params.CurrentPeriodEnd = sql.NullTime{Time: time.Unix(sub.CurrentPeriodEnd, 0), Valid: true}
	}

	_, err := h.queries.UpsertSubscription(ctx, params)
	return err
}

func (h *PaymentHandler) notifyPaymentFailed(c echo.Context, invoice *stripego.Invoice) {
	if invoice.Subscription == nil {
		return
	}
	ctx := c.Request().Context()
	sub, err := h.queries.GetSubscriptionByStripeID(ctx, sql.NullString{String: invoice.Subscription.ID, Valid: true})
	if err != nil {
		return
	}
	if _, err := h.queries.CreateNotification(ctx, db.CreateNotificationParams{
		ID:     ulid.Make().String(),
		UserID: sub.UserID,
		Kind:   "billing",
		Title:  "Payment failed",
		Body:   "Your last subscription payment failed. Update your payment method to keep transcriptions running.",
	}); err != nil {
		slog.Error("failed to create payment-failed notification", "error", err)
	}
}
