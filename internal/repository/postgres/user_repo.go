package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type UserRepo struct {
	db PgxPool
}

func NewUserRepo(db PgxPool) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, email, password_hash, full_name, phone, avatar_url, credits, tier,
	subscription_start, subscription_end, reset_token, reset_token_expires, last_login_at, active, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.AvatarURL,
		&u.Credits, &u.Tier, &u.SubscriptionStart, &u.SubscriptionEnd,
		&u.ResetToken, &u.ResetTokenExpires, &u.LastLoginAt, &u.Active, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, phone, credits, tier, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Credits, u.Tier, u.Active, u.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_token = $1 AND reset_token <> ''`, token))
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id)
	return err
}

func (r *UserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone, avatarURL string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET full_name = $2, phone = $3, avatar_url = $4 WHERE id = $1`,
		id, fullName, phone, avatarURL)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, token string, expires time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET reset_token = $2, reset_token_expires = $3 WHERE id = $1`,
		id, token, expires)
	return err
}

func (r *UserRepo) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, reset_token = '', reset_token_expires = NULL WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeCredit is a single conditional decrement so two concurrent
// requests cannot both spend the last credit.
func (r *UserRepo) ConsumeCredit(ctx context.Context, id uuid.UUID) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx,
		`UPDATE users SET credits = credits - 1 WHERE id = $1 AND credits > 0 RETURNING credits`,
		id).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, repository.ErrNoCredits
	}
	if err != nil {
		return 0, fmt.Errorf("consume credit: %w", err)
	}
	return remaining, nil
}

func (r *UserRepo) ApplyUpgrade(ctx context.Context, id uuid.UUID, tier models.Tier, credits int, start, end time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET tier = $2,
			credits = CASE WHEN $3 < 0 THEN -1 ELSE credits + $3 END,
			subscription_start = $4, subscription_end = $5
		 WHERE id = $1`,
		id, tier, credits, start, end)
	if err != nil {
		return fmt.Errorf("apply upgrade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
