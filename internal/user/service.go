// Package user covers profile management, API keys, usage statistics and
// billing summaries for the authenticated account.
package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/billing"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/policy"
	"github.com/brainsait/docuscan/internal/repository"
)

const apiKeyPrefix = "dsk_"

type Service struct {
	users    repository.UserStore
	history  repository.HistoryStore
	payments repository.PaymentStore
	invoices repository.InvoiceStore
	apiKeys  repository.APIKeyStore
}

func NewService(users repository.UserStore, history repository.HistoryStore, payments repository.PaymentStore, invoices repository.InvoiceStore, apiKeys repository.APIKeyStore) *Service {
	return &Service{users: users, history: history, payments: payments, invoices: invoices, apiKeys: apiKeys}
}

func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone, avatarURL string) (*models.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, fullName, phone, avatarURL); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.Profile(ctx, userID)
}

// CreatedAPIKey carries the plaintext secret exactly once at creation.
type CreatedAPIKey struct {
	Key    models.APIKey `json:"key"`
	Secret string        `json:"secret"`
}

// CreateAPIKey issues a new key for paid tiers. Only the hash is stored;
// the secret cannot be recovered later.
func (s *Service) CreateAPIKey(ctx context.Context, user *models.User, name string, expiresAt *time.Time) (*CreatedAPIKey, error) {
	if err := policy.CanIssueAPIKey(user.Tier); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apierror.Validation("key name is required")
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	secret := apiKeyPrefix + hex.EncodeToString(buf)
	hash := sha256.Sum256([]byte(secret))

	key := models.APIKey{
		ID:        uuid.New(),
		UserID:    user.ID,
		KeyHash:   hex.EncodeToString(hash[:]),
		Name:      name,
		ExpiresAt: expiresAt,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.apiKeys.Create(ctx, &key); err != nil {
		return nil, fmt.Errorf("store api key: %w", err)
	}

	return &CreatedAPIKey{Key: key, Secret: secret}, nil
}

func (s *Service) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	return s.apiKeys.List(ctx, userID)
}

func (s *Service) DeleteAPIKey(ctx context.Context, id, userID uuid.UUID) error {
	err := s.apiKeys.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierror.NotFound("api key not found")
	}
	return err
}

func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (*models.UsageStats, error) {
	return s.history.Stats(ctx, userID)
}

// BillingSummary combines the current plan with payment history.
type BillingSummary struct {
	Tier              models.Tier      `json:"tier"`
	Credits           int              `json:"credits"`
	SubscriptionStart *time.Time       `json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time       `json:"subscription_end,omitempty"`
	Plan              billing.Plan     `json:"plan"`
	Payments          []models.Payment `json:"payments"`
}

func (s *Service) Billing(ctx context.Context, userID uuid.UUID) (*BillingSummary, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	plan, _ := billing.PlanFor(u.Tier)
	return &BillingSummary{
		Tier:              u.Tier,
		Credits:           u.Credits,
		SubscriptionStart: u.SubscriptionStart,
		SubscriptionEnd:   u.SubscriptionEnd,
		Plan:              plan,
		Payments:          payments,
	}, nil
}

func (s *Service) Invoice(ctx context.Context, id, userID uuid.UUID) (*models.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("invoice not found")
		}
		return nil, err
	}
	return inv, nil
}
