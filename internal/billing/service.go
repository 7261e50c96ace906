// Package billing manages the fixed pricing table, hosted checkout
// sessions and gateway callbacks. Callback bodies are never trusted: the
// payment status is always re-verified with the gateway before any user
// state changes.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

// vatRate is applied to invoice amounts.
const vatRate = 0.15

type Service struct {
	users    repository.UserStore
	payments repository.PaymentStore
	invoices repository.InvoiceStore
	gateway  Gateway
}

func NewService(users repository.UserStore, payments repository.PaymentStore, invoices repository.InvoiceStore, gw Gateway) *Service {
	return &Service{users: users, payments: payments, invoices: invoices, gateway: gw}
}

// SessionResult is the response to a create-session request.
type SessionResult struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	CheckoutURL string    `json:"checkout_url"`
}

// CreateSession records a pending payment for the requested tier and opens
// a hosted checkout session for it.
func (s *Service) CreateSession(ctx context.Context, user *models.User, tier models.Tier) (*SessionResult, error) {
	plan, ok := PlanFor(tier)
	if !ok || plan.PriceCents == 0 {
		return nil, apierror.Validation("unknown or non-purchasable tier")
	}

	payment := &models.Payment{
		ID:          uuid.New(),
		UserID:      user.ID,
		Tier:        tier,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Status:      models.PaymentStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutParams{
		PaymentID:   payment.ID.String(),
		PlanName:    plan.Name,
		AmountCents: plan.PriceCents,
		Currency:    plan.Currency,
		Email:       user.Email,
	})
	if err != nil {
		if markErr := s.payments.SetStatus(ctx, payment.ID, models.PaymentStatusFailed); markErr != nil {
			slog.Error("could not mark payment failed", "payment_id", payment.ID, "error", markErr)
		}
		return nil, fmt.Errorf("open checkout: %w", err)
	}

	if err := s.payments.SetGatewayID(ctx, payment.ID, sess.ID); err != nil {
		return nil, fmt.Errorf("store gateway id: %w", err)
	}

	return &SessionResult{PaymentID: payment.ID, CheckoutURL: sess.URL}, nil
}

// HandleCallback settles a pending payment. The reported status is only a
// hint; the authoritative status comes from the gateway. On confirmed
// success the user's tier, credits and subscription window are updated and
// one invoice is issued.
func (s *Service) HandleCallback(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("payment not found")
		}
		return nil, err
	}
	if payment.Status != models.PaymentStatusPending {
		// Already settled; callbacks can arrive more than once.
		return payment, nil
	}
	if payment.GatewayID == "" {
		return nil, apierror.Validation("payment has no checkout session")
	}

	gatewayStatus, err := s.gateway.VerifyPayment(ctx, payment.GatewayID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	if gatewayStatus != GatewayStatusPaid {
		if err := s.payments.SetStatus(ctx, payment.ID, models.PaymentStatusFailed); err != nil {
			return nil, fmt.Errorf("mark payment failed: %w", err)
		}
		payment.Status = models.PaymentStatusFailed
		return payment, nil
	}

	if err := s.settle(ctx, payment); err != nil {
		return nil, err
	}
	payment.Status = models.PaymentStatusCompleted
	return payment, nil
}

func (s *Service) settle(ctx context.Context, payment *models.Payment) error {
	plan, ok := PlanFor(payment.Tier)
	if !ok {
		return fmt.Errorf("payment %s references unknown tier %q", payment.ID, payment.Tier)
	}

	if err := s.payments.SetStatus(ctx, payment.ID, models.PaymentStatusCompleted); err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}

	user, err := s.users.GetByID(ctx, payment.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	now := time.Now().UTC()
	start := now
	if user.SubscriptionStart != nil {
		start = *user.SubscriptionStart
	}
	end := now
	if user.SubscriptionEnd != nil && user.SubscriptionEnd.After(now) {
		end = *user.SubscriptionEnd
	}
	end = end.AddDate(0, 1, 0)

	if err := s.users.ApplyUpgrade(ctx, payment.UserID, payment.Tier, plan.Credits, start, end); err != nil {
		return fmt.Errorf("apply upgrade: %w", err)
	}

	vat := int64(float64(payment.AmountCents) * vatRate)
	invoice := &models.Invoice{
		ID:          uuid.New(),
		UserID:      payment.UserID,
		PaymentID:   payment.ID,
		AmountCents: payment.AmountCents,
		VATCents:    vat,
		TotalCents:  payment.AmountCents + vat,
		Currency:    payment.Currency,
		IssuedAt:    now,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	slog.Info("payment settled",
		"payment_id", payment.ID,
		"user_id", payment.UserID,
		"tier", payment.Tier,
		"amount_cents", payment.AmountCents,
	)
	return nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return s.payments.ListByUser(ctx, userID)
}
