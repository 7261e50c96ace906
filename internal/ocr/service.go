// Package ocr implements the extraction pipeline: validate, fingerprint,
// consult the result cache, call the vision model on a miss, persist and
// charge. Every attempt leaves exactly one history row.
package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/ai"
	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/cache"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/policy"
	"github.com/brainsait/docuscan/internal/repository"
	"github.com/brainsait/docuscan/pkg/fingerprint"
	"github.com/brainsait/docuscan/pkg/pdfinfo"
)

const (
	MaxFileSize  = 50 << 20 // 50 MB
	MaxBatchSize = 10

	visionMaxTokens = 4096
)

var allowedTypes = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// Upload is one file received from a client.
type Upload struct {
	FileName string
	Data     []byte
	Options  Options
}

// Result is the outcome of a single extraction attempt.
type Result struct {
	RecordID         uuid.UUID `json:"record_id"`
	FileName         string    `json:"file_name"`
	Text             string    `json:"text"`
	Language         string    `json:"language"`
	Confidence       float64   `json:"confidence"`
	PageCount        int       `json:"page_count"`
	Cached           bool      `json:"cached"`
	CreditsCharged   int       `json:"credits_charged"`
	CreditsRemaining int       `json:"credits_remaining"`
	ProcessingMs     int64     `json:"processing_ms"`
}

// BatchError reports one failed file inside a batch.
type BatchError struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BlobStore persists original uploads. A nil store disables persistence.
type BlobStore interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

type Service struct {
	users       repository.UserStore
	history     repository.HistoryStore
	cache       ResultCache
	gateway     ai.Gateway
	blobs       BlobStore
	visionModel string
}

func NewService(users repository.UserStore, history repository.HistoryStore, rc ResultCache, gw ai.Gateway, blobs BlobStore, visionModel string) *Service {
	return &Service{
		users:       users,
		history:     history,
		cache:       rc,
		gateway:     gw,
		blobs:       blobs,
		visionModel: visionModel,
	}
}

// Process runs the full pipeline for one upload. Identical bytes hit the
// shared fingerprint cache and are free; misses call the vision model and
// charge one credit for free-tier users.
func (s *Service) Process(ctx context.Context, user *models.User, up Upload) (*Result, error) {
	started := time.Now()

	contentType, err := validate(up)
	if err != nil {
		s.recordFailure(ctx, user.ID, up, "", err)
		return nil, err
	}

	if err := policy.CanProcessOCR(user.Tier, user.Credits); err != nil {
		s.recordFailure(ctx, user.ID, up, "", err)
		return nil, err
	}

	fp := fingerprint.Bytes(up.Data)

	if cached, cacheErr := s.cache.Get(ctx, fp); cacheErr == nil {
		rec := s.buildRecord(user.ID, up, fp, contentType)
		rec.Text = cached.Text
		rec.Language = cached.Language
		rec.Confidence = cached.Confidence
		rec.PageCount = cached.PageCount
		rec.Status = models.OCRStatusCached
		rec.ProcessingMs = time.Since(started).Milliseconds()
		if err := s.history.Insert(ctx, rec); err != nil {
			return nil, fmt.Errorf("insert history: %w", err)
		}
		return &Result{
			RecordID:         rec.ID,
			FileName:         up.FileName,
			Text:             cached.Text,
			Language:         cached.Language,
			Confidence:       cached.Confidence,
			PageCount:        cached.PageCount,
			Cached:           true,
			CreditsRemaining: user.Credits,
			ProcessingMs:     rec.ProcessingMs,
		}, nil
	} else if !errors.Is(cacheErr, cache.ErrMiss) {
		slog.Warn("result cache unavailable, proceeding without it", "error", cacheErr)
	}

	dataURI := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(up.Data)
	resp, err := s.gateway.Vision(ctx, ai.VisionRequest{
		Model:        s.visionModel,
		System:       systemPrompt(up.Options),
		Prompt:       userPrompt,
		ImageDataURI: dataURI,
		MaxTokens:    visionMaxTokens,
	})
	if err != nil {
		s.recordFailure(ctx, user.ID, up, fp, err)
		return nil, fmt.Errorf("vision extraction: %w", err)
	}

	text := resp.Content
	language := detectLanguage(text)
	pageCount := 1
	if contentType == "application/pdf" {
		if n, pdfErr := pdfinfo.PageCount(up.Data); pdfErr == nil {
			pageCount = n
		} else {
			slog.Warn("could not read pdf page count", "file", up.FileName, "error", pdfErr)
		}
	}

	if s.blobs != nil {
		objectPath := fmt.Sprintf("%s/%s%s", user.ID, fp, strings.ToLower(path.Ext(up.FileName)))
		if _, upErr := s.blobs.Upload(ctx, objectPath, up.Data, contentType); upErr != nil {
			slog.Warn("blob upload failed", "file", up.FileName, "error", upErr)
		}
	}

	if cacheErr := s.cache.Put(ctx, fp, &CachedResult{
		Text:       text,
		Language:   language,
		Confidence: fixedConfidence,
		PageCount:  pageCount,
		CachedAt:   time.Now().UTC(),
	}); cacheErr != nil {
		slog.Warn("result cache write failed", "error", cacheErr)
	}

	charged := 0
	remaining := user.Credits
	if policy.Chargeable(user.Tier, user.Credits) {
		left, chargeErr := s.users.ConsumeCredit(ctx, user.ID)
		switch {
		case chargeErr == nil:
			charged = 1
			remaining = left
		case errors.Is(chargeErr, repository.ErrNoCredits):
			// Lost a race with a concurrent request; the extraction already
			// happened so the result is returned uncharged.
			remaining = 0
		default:
			return nil, fmt.Errorf("consume credit: %w", chargeErr)
		}
	}

	rec := s.buildRecord(user.ID, up, fp, contentType)
	rec.Text = text
	rec.Language = language
	rec.Confidence = fixedConfidence
	rec.PageCount = pageCount
	rec.CreditsCharged = charged
	rec.Status = models.OCRStatusCompleted
	rec.ProcessingMs = time.Since(started).Milliseconds()
	if err := s.history.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("insert history: %w", err)
	}

	return &Result{
		RecordID:         rec.ID,
		FileName:         up.FileName,
		Text:             text,
		Language:         language,
		Confidence:       fixedConfidence,
		PageCount:        pageCount,
		CreditsCharged:   charged,
		CreditsRemaining: remaining,
		ProcessingMs:     rec.ProcessingMs,
	}, nil
}

// ProcessBatch handles up to MaxBatchSize files sequentially. The tier gate
// runs before any file is touched; per-file failures are isolated.
func (s *Service) ProcessBatch(ctx context.Context, user *models.User, uploads []Upload) ([]Result, []BatchError, error) {
	if err := policy.CanBatch(user.Tier); err != nil {
		return nil, nil, err
	}
	if len(uploads) == 0 {
		return nil, nil, apierror.Validation("no files provided")
	}
	if len(uploads) > MaxBatchSize {
		return nil, nil, apierror.Validation(fmt.Sprintf("batch size exceeds the maximum of %d files", MaxBatchSize))
	}

	var (
		results  []Result
		failures []BatchError
	)
	for _, up := range uploads {
		res, err := s.Process(ctx, user, up)
		if err != nil {
			failures = append(failures, BatchError{FileName: up.FileName, Error: publicError(err)})
			continue
		}
		results = append(results, *res)
	}
	return results, failures, nil
}

func (s *Service) GetResult(ctx context.Context, id, userID uuid.UUID) (*models.OCRRecord, error) {
	rec, err := s.history.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierror.NotFound("result not found")
		}
		return nil, err
	}
	return rec, nil
}

func (s *Service) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.OCRRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.history.List(ctx, userID, limit, offset)
}

func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*models.UsageStats, error) {
	return s.history.Stats(ctx, userID)
}

func (s *Service) buildRecord(userID uuid.UUID, up Upload, fp, contentType string) *models.OCRRecord {
	return &models.OCRRecord{
		ID:            uuid.New(),
		UserID:        userID,
		FileName:      up.FileName,
		FileSizeBytes: int64(len(up.Data)),
		FileType:      contentType,
		Fingerprint:   fp,
		CreatedAt:     time.Now().UTC(),
	}
}

func (s *Service) recordFailure(ctx context.Context, userID uuid.UUID, up Upload, fp string, cause error) {
	rec := s.buildRecord(userID, up, fp, "")
	rec.Status = models.OCRStatusFailed
	rec.ErrorMessage = publicError(cause)
	if err := s.history.Insert(ctx, rec); err != nil {
		slog.Error("failed to record ocr failure", "file", up.FileName, "error", err)
	}
}

// publicError keeps downstream detail out of stored and returned messages.
func publicError(err error) string {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "processing failed"
}

func validate(up Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", apierror.Validation("file is empty")
	}
	if len(up.Data) > MaxFileSize {
		return "", apierror.PayloadTooLarge("file exceeds the 50 MB limit")
	}
	ext := strings.ToLower(path.Ext(up.FileName))
	contentType, ok := allowedTypes[ext]
	if !ok {
		return "", apierror.UnsupportedMedia("unsupported file type, expected pdf, png, jpg, jpeg or webp")
	}
	return contentType, nil
}
