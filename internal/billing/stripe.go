package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/brainsait/docuscan/internal/config"
)

// CheckoutParams describes the hosted checkout to create for a payment.
type CheckoutParams struct {
	PaymentID   string
	PlanName    string
	AmountCents int64
	Currency    string
	Email       string
}

// CheckoutSession identifies a created hosted checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Gateway abstracts the payment provider so callback verification can be
// faked in tests.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	// VerifyPayment returns the provider's own payment status for a
	// session. Callbacks are never trusted without this check.
	VerifyPayment(ctx context.Context, gatewayID string) (string, error)
}

// GatewayStatusPaid is the provider status meaning funds were captured.
const GatewayStatusPaid = "paid"

type StripeGateway struct {
	successURL string
	cancelURL  string
}

func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{successURL: cfg.SuccessURL, cancelURL: cfg.CancelURL}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(p.Currency),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.PlanName + " plan"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:    stripe.String(g.successURL),
		CancelURL:     stripe.String(g.cancelURL),
		CustomerEmail: stripe.String(p.Email),
		Metadata:      map[string]string{"payment_id": p.PaymentID},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) VerifyPayment(ctx context.Context, gatewayID string) (string, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(gatewayID, params)
	if err != nil {
		return "", fmt.Errorf("fetch checkout session: %w", err)
	}
	return string(sess.PaymentStatus), nil
}
