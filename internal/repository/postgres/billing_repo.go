package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type PaymentRepo struct {
	db PgxPool
}

func NewPaymentRepo(db PgxPool) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, user_id, tier, amount_cents, currency, status, gateway_id, created_at, updated_at`

func (r *PaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO payments (id, user_id, tier, amount_cents, currency, status, gateway_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		p.ID, p.UserID, p.Tier, p.AmountCents, p.Currency, p.Status, p.GatewayID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	var p models.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.Tier, &p.AmountCents, &p.Currency, &p.Status,
		&p.GatewayID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepo) SetGatewayID(ctx context.Context, id uuid.UUID, gatewayID string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE payments SET gateway_id = $2, updated_at = now() WHERE id = $1`, id, gatewayID)
	return err
}

func (r *PaymentRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.Tier, &p.AmountCents, &p.Currency, &p.Status,
			&p.GatewayID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type InvoiceRepo struct {
	db PgxPool
}

func NewInvoiceRepo(db PgxPool) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, user_id, payment_id, amount_cents, vat_cents, total_cents, currency, issued_at`

func (r *InvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.UserID, inv.PaymentID, inv.AmountCents, inv.VATCents, inv.TotalCents,
		inv.Currency, inv.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.UserID, &inv.PaymentID, &inv.AmountCents, &inv.VATCents,
		&inv.TotalCents, &inv.Currency, &inv.IssuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

func (r *InvoiceRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Invoice, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1 ORDER BY issued_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.UserID, &inv.PaymentID, &inv.AmountCents, &inv.VATCents,
			&inv.TotalCents, &inv.Currency, &inv.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

type APIKeyRepo struct {
	db PgxPool
}

func NewAPIKeyRepo(db PgxPool) *APIKeyRepo { return &APIKeyRepo{db: db} }

func (r *APIKeyRepo) Create(ctx context.Context, k *models.APIKey) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, key_hash, name, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		k.ID, k.UserID, k.KeyHash, k.Name, k.Active, k.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *APIKeyRepo) List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, key_hash, name, last_used_at, expires_at, active, created_at
		 FROM api_keys WHERE user_id = $1 AND active ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.KeyHash, &k.Name, &k.LastUsedAt,
			&k.ExpiresAt, &k.Active, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE api_keys SET active = FALSE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
