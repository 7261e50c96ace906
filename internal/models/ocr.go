package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	OCRStatusPending   = "pending"
	OCRStatusCompleted = "completed"
	OCRStatusCached    = "cached"
	OCRStatusFailed    = "failed"
)

// OCRRecord is one row per processing attempt, immutable after creation.
type OCRRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	FileName       string    `json:"file_name" db:"file_name"`
	FileSizeBytes  int64     `json:"file_size_bytes" db:"file_size_bytes"`
	FileType       string    `json:"file_type" db:"file_type"`
	Fingerprint    string    `json:"fingerprint" db:"fingerprint"`
	Text           string    `json:"text,omitempty" db:"extracted_text"`
	Language       string    `json:"language,omitempty" db:"language"`
	Confidence     float64   `json:"confidence,omitempty" db:"confidence"`
	PageCount      int       `json:"page_count,omitempty" db:"page_count"`
	ProcessingMs   int64     `json:"processing_ms" db:"processing_ms"`
	CreditsCharged int       `json:"credits_charged" db:"credits_charged"`
	Status         string    `json:"status" db:"status"`
	ErrorMessage   string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// UsageStats aggregates a user's OCR history.
type UsageStats struct {
	TotalProcessed int `json:"total_processed"`
	Completed      int `json:"completed"`
	Cached         int `json:"cached"`
	Failed         int `json:"failed"`
	CreditsUsed    int `json:"credits_used"`
}
