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

type HistoryRepo struct {
	db PgxPool
}

func NewHistoryRepo(db PgxPool) *HistoryRepo { return &HistoryRepo{db: db} }

const historyColumns = `id, user_id, file_name, file_size_bytes, file_type, fingerprint,
	extracted_text, language, confidence, page_count, processing_ms, credits_charged,
	status, error_message, created_at`

func (r *HistoryRepo) Insert(ctx context.Context, rec *models.OCRRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO ocr_history (`+historyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		rec.ID, rec.UserID, rec.FileName, rec.FileSizeBytes, rec.FileType, rec.Fingerprint,
		rec.Text, rec.Language, rec.Confidence, rec.PageCount, rec.ProcessingMs, rec.CreditsCharged,
		rec.Status, rec.ErrorMessage, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (r *HistoryRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.OCRRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+historyColumns+` FROM ocr_history WHERE id = $1 AND user_id = $2`, id, userID)
	var rec models.OCRRecord
	err := row.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.FileSizeBytes, &rec.FileType,
		&rec.Fingerprint, &rec.Text, &rec.Language, &rec.Confidence, &rec.PageCount,
		&rec.ProcessingMs, &rec.CreditsCharged, &rec.Status, &rec.ErrorMessage, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	return &rec, nil
}

func (r *HistoryRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OCRRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+historyColumns+` FROM ocr_history
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var recs []models.OCRRecord
	for rows.Next() {
		var rec models.OCRRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.FileName, &rec.FileSizeBytes, &rec.FileType,
			&rec.Fingerprint, &rec.Text, &rec.Language, &rec.Confidence, &rec.PageCount,
			&rec.ProcessingMs, &rec.CreditsCharged, &rec.Status, &rec.ErrorMessage, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *HistoryRepo) Stats(ctx context.Context, userID uuid.UUID) (*models.UsageStats, error) {
	var s models.UsageStats
	err := r.db.QueryRow(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE status = 'completed'),
		        count(*) FILTER (WHERE status = 'cached'),
		        count(*) FILTER (WHERE status = 'failed'),
		        COALESCE(sum(credits_charged), 0)
		 FROM ocr_history WHERE user_id = $1`, userID).
		Scan(&s.TotalProcessed, &s.Completed, &s.Cached, &s.Failed, &s.CreditsUsed)
	if err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}
	return &s, nil
}
