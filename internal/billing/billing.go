package billing

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v80"
	checkoutsession "github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/customer"
	"github.com/stripe/stripe-go/v80/subscription"
)

func init() {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
}

// Service wraps the Stripe subscription billing calls.
type Service struct {
	apiKey     string
	priceID    string
	successURL string
	cancelURL  string
}

func NewService(priceID, baseURL string) *Service {
	return &Service{
		apiKey:     os.Getenv("STRIPE_SECRET_KEY"),
		priceID:    priceID,
		successURL: baseURL + "/mobile-v3/settings?checkout=success",
		cancelURL:  baseURL + "/pricing?checkout=cancelled",
	}
}

func (s *Service) CreateCustomer(email, name string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}

	return customer.New(params)
}

// CreateCheckoutSession starts a subscription checkout for the given user.
// The user ID rides along as the client reference so the webhook can link
// the resulting subscription back to a local account.
func (s *Service) CreateCheckoutSession(userID, email string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:     stripe.String(email),
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}

	return checkoutsession.New(params)
}

func (s *Service) GetCheckoutSession(sessionID string) (*stripe.CheckoutSession, error) {
	return checkoutsession.Get(sessionID, nil)
}

func (s *Service) GetSubscription(subscriptionID string) (*stripe.Subscription, error) {
	return subscription.Get(subscriptionID, nil)
}

func (s *Service) CancelSubscription(subscriptionID string) (*stripe.Subscription, error) {
	sub, err := subscription.Cancel(subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("error cancelling subscription: %w", err)
	}
	return sub, nil
}
