// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/models"
)

// Sentinel errors shared across store implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrNoCredits = errors.New("no credits remaining")
)

// UserStore provides access to user rows. Every read/write is keyed by
// the owning user id; users are never hard-deleted.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, avatarURL string) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error
	// ResetPassword replaces the password hash and clears the reset token
	// in a single statement.
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	// ConsumeCredit atomically decrements the balance if positive and
	// returns the remaining credits. Returns ErrNoCredits when the balance
	// is already zero. Callers must skip this for unlimited balances.
	ConsumeCredit(ctx context.Context, id uuid.UUID) (int, error)
	// ApplyUpgrade sets the tier, adds credits (or pins the unlimited
	// sentinel when credits < 0) and extends the subscription window.
	ApplyUpgrade(ctx context.Context, id uuid.UUID, tier models.Tier, credits int, start, end time.Time) error
}

type HistoryStore interface {
	Insert(ctx context.Context, rec *models.OCRRecord) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.OCRRecord, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OCRRecord, error)
	Stats(ctx context.Context, userID uuid.UUID) (*models.UsageStats, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	SetGatewayID(ctx context.Context, id uuid.UUID, gatewayID string) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
}

type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error)
}

type APIKeyStore interface {
	Create(ctx context.Context, k *models.APIKey) error
	List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

type RAGStore interface {
	InsertDocument(ctx context.Context, doc *models.RAGDocument) error
	ListDocuments(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RAGDocument, error)
	// RecentDocuments returns the caller's newest documents with content,
	// bounded by limit, for retrieval scoring.
	RecentDocuments(ctx context.Context, userID uuid.UUID, limit int) ([]models.RAGDocument, error)
	DeleteDocument(ctx context.Context, id, userID uuid.UUID) error
	CreateConversation(ctx context.Context, c *models.Conversation) error
	GetConversation(ctx context.Context, id, userID uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	AppendMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
}
