package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock
}

func TestUserRepo_Create_OK_and_UniqueViolation(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewUserRepo(mock)
	ctx := context.Background()

	u := &models.User{
		ID:           uuid.New(),
		Email:        "a@example.com",
		PasswordHash: "hash",
		Credits:      10,
		Tier:         models.TierFree,
		Active:       true,
		CreatedAt:    time.Now(),
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Credits, u.Tier, u.Active, u.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, r.Create(ctx, u))

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.Credits, u.Tier, u.Active, u.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	require.ErrorIs(t, r.Create(ctx, u), repository.ErrDuplicate)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ConsumeCredit(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewUserRepo(mock)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`UPDATE users SET credits = credits - 1 WHERE id = \$1 AND credits > 0 RETURNING credits`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"credits"}).AddRow(4))
	remaining, err := r.ConsumeCredit(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 4, remaining)

	// Balance already zero: the conditional update matches no row.
	mock.ExpectQuery(`UPDATE users SET credits = credits - 1 WHERE id = \$1 AND credits > 0 RETURNING credits`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.ConsumeCredit(ctx, id)
	require.ErrorIs(t, err, repository.ErrNoCredits)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewUserRepo(mock)

	mock.ExpectQuery(`SELECT .* FROM users WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err := r.GetByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ApplyUpgrade(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewUserRepo(mock)
	ctx := context.Background()
	id := uuid.New()
	start := time.Now()
	end := start.AddDate(0, 1, 0)

	mock.ExpectExec(`UPDATE users SET tier = \$2`).
		WithArgs(id, models.TierStarter, 100, start, end).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.ApplyUpgrade(ctx, id, models.TierStarter, 100, start, end))

	mock.ExpectExec(`UPDATE users SET tier = \$2`).
		WithArgs(id, models.TierStarter, 100, start, end).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.ApplyUpgrade(ctx, id, models.TierStarter, 100, start, end), repository.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_ResetPassword(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewUserRepo(mock)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET password_hash = \$2, reset_token = '', reset_token_expires = NULL WHERE id = \$1`).
		WithArgs(id, "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.ResetPassword(ctx, id, "newhash"))

	require.NoError(t, mock.ExpectationsWereMet())
}
