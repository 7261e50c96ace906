package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment is a gateway transaction intent created when checkout starts.
type Payment struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Tier        Tier      `json:"tier" db:"tier"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Status      string    `json:"status" db:"status"`
	GatewayID   string    `json:"gateway_id,omitempty" db:"gateway_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Invoice is derived from a completed payment.
type Invoice struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	PaymentID   uuid.UUID `json:"payment_id" db:"payment_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	VATCents    int64     `json:"vat_cents" db:"vat_cents"`
	TotalCents  int64     `json:"total_cents" db:"total_cents"`
	Currency    string    `json:"currency" db:"currency"`
	IssuedAt    time.Time `json:"issued_at" db:"issued_at"`
}
