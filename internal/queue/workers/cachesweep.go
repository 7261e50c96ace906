package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brainsait/docuscan/internal/ocr"
	"github.com/brainsait/docuscan/internal/queue"
)

// CacheSweepWorker removes extraction cache entries older than the TTL.
type CacheSweepWorker struct {
	cache ocr.ResultCache
}

func NewCacheSweepWorker(cache ocr.ResultCache) *CacheSweepWorker {
	return &CacheSweepWorker{cache: cache}
}

func (w *CacheSweepWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.CacheSweepPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}

	maxAge := ocr.CacheTTL
	if payload.OlderThanHours > 0 {
		maxAge = time.Duration(payload.OlderThanHours) * time.Hour
	}
	cutoff := time.Now().UTC().Add(-maxAge)

	removed, err := w.cache.Sweep(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep cache: %w", err)
	}

	slog.Info("cache sweep finished", "removed", removed, "cutoff", cutoff)
	return nil
}
