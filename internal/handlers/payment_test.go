package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Webhook tests run without STRIPE_WEBHOOK_SECRET so events are parsed
// unverified, same as local development.

func TestWebhookCheckoutCompletedActivatesSubscription(t *testing.T) {
	store := newTestStorage(t)
	h := NewPaymentHandler(nil, store.Queries)

	user, err := CreateTestUserWithEmail(store.Queries, "kim@example.com")
	require.NoError(t, err)

	event := map[string]any{
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_test_1",
				"client_reference_id": user.ID,
				"customer":            map[string]any{"id": "cus_1"},
				"subscription":        map[string]any{"id": "sub_1"},
				"amount_total":        999,
			},
		},
	}

	c, rec := NewTestContext(http.MethodPost, "/api/payments/webhook", event)

	require.NoError(t, h.HandleWebhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	sub, err := store.Queries.GetSubscriptionByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, "sub_1", sub.StripeSubscriptionID.String)

	notifications, err := store.Queries.ListNotificationsByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "billing", notifications[0].Kind)
}

func TestWebhookSubscriptionDeletedUpdatesStatus(t *testing.T) {
	store := newTestStorage(t)
	h := NewPaymentHandler(nil, store.Queries)

	user, err := CreateTestUserWithEmail(store.Queries, "kim@example.com")
	require.NoError(t, err)

	// Seed an active subscription via the checkout event first.
	checkout := map[string]any{
		"type": "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_test_1",
				"client_reference_id": user.ID,
				"subscription":        map[string]any{"id": "sub_1"},
			},
		},
	}
	c, _ := NewTestContext(http.MethodPost, "/api/payments/webhook", checkout)
	require.NoError(t, h.HandleWebhook(c))

	cancelled := map[string]any{
		"type": "customer.subscription.deleted",
		"data": map[string]any{
			"object": map[string]any{
				"id":     "sub_1",
				"status": "canceled",
			},
		},
	}
	c, rec := NewTestContext(http.MethodPost, "/api/payments/webhook", cancelled)
	require.NoError(t, h.HandleWebhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	sub, err := store.Queries.GetSubscriptionByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "canceled", sub.Status)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	store := newTestStorage(t)
	h := NewPaymentHandler(nil, store.Queries)

	c, rec := NewTestContext(http.MethodPost, "/api/payments/webhook", map[string]any{
		"type": "charge.refunded",
		"data": map[string]any{"object": map[string]any{}},
	})

	require.NoError(t, h.HandleWebhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSubscriptionWithoutOne(t *testing.T) {
	store := newTestStorage(t)
	h := NewPaymentHandler(nil, store.Queries)

	user, err := CreateTestUser(store.Queries)
	require.NoError(t, err)

	c, rec := NewTestContext(http.MethodGet, "/api/payments/subscription", nil)
	SetTestUser(c, user)

	require.NoError(t, h.HandleGetSubscription(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := AssertJSONResponse(rec)
	require.NoError(t, err)
	assert.Nil(t, body["subscription"])
}
