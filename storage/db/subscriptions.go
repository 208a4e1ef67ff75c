package db

import (
	"context"
	"database/sql"
)

const subscriptionColumns = `id, user_id, stripe_customer_id, stripe_subscription_id, plan, status, current_period_end, created_at, updated_at`

func scanSubscription(sc interface {
	Scan(...interface{}) error
}) (Subscription, error) {
	var s Subscription
	err := sc.Scan(&s.ID, &s.UserID, &s.StripeCustomerID, &s.StripeSubscriptionID, &s.Plan, &s.Status, &s.CurrentPeriodEnd, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

type UpsertSubscriptionParams struct {
	ID                   string
	UserID               string
	StripeCustomerID     sql.NullString
	StripeSubscriptionID sql.NullString
	Plan                 string
	Status               string
	CurrentPeriodEnd     sql.NullTime
}

func (q *Queries) UpsertSubscription(ctx context.Context, arg UpsertSubscriptionParams) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO subscriptions (id, user_id, stripe_customer_id, stripe_subscription_id, plan, status, current_period_end)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			plan = excluded.plan,
			status = excluded.status,
			current_period_end = excluded.current_period_end,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+subscriptionColumns,
		arg.ID, arg.UserID, arg.StripeCustomerID, arg.StripeSubscriptionID, arg.Plan, arg.Status, arg.CurrentPeriodEnd)
	return scanSubscription(row)
}

func (q *Queries) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID sql.NullString) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE stripe_subscription_id = ?`, stripeSubscriptionID)
	return scanSubscription(row)
}

func (q *Queries) GetSubscriptionByUser(ctx context.Context, userID string) (Subscription, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+` FROM subscriptions
		WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)
	return scanSubscription(row)
}
