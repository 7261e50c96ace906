package ocr

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/docuscan/internal/ai"
	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/cache"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type fakeUsers struct {
	credits map[uuid.UUID]int
}

func (f *fakeUsers) Create(context.Context, *models.User) error { return nil }
func (f *fakeUsers) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) GetByResetToken(context.Context, string) (*models.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUsers) UpdateLastLogin(context.Context, uuid.UUID) error { return nil }
func (f *fakeUsers) UpdateProfile(context.Context, uuid.UUID, string, string, string) error {
	return nil
}
func (f *fakeUsers) SetResetToken(context.Context, uuid.UUID, string, time.Time) error { return nil }
func (f *fakeUsers) ResetPassword(context.Context, uuid.UUID, string) error            { return nil }

func (f *fakeUsers) ConsumeCredit(_ context.Context, id uuid.UUID) (int, error) {
	if f.credits[id] <= 0 {
		return 0, repository.ErrNoCredits
	}
	f.credits[id]--
	return f.credits[id], nil
}

func (f *fakeUsers) ApplyUpgrade(context.Context, uuid.UUID, models.Tier, int, time.Time, time.Time) error {
	return nil
}

type fakeHistory struct {
	records []models.OCRRecord
}

func (f *fakeHistory) Insert(_ context.Context, rec *models.OCRRecord) error {
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeHistory) GetByID(_ context.Context, id, userID uuid.UUID) (*models.OCRRecord, error) {
	for _, r := range f.records {
		if r.ID == id && r.UserID == userID {
			cp := r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHistory) List(context.Context, uuid.UUID, int, int) ([]models.OCRRecord, error) {
	return f.records, nil
}

func (f *fakeHistory) Stats(context.Context, uuid.UUID) (*models.UsageStats, error) {
	return &models.UsageStats{TotalProcessed: len(f.records)}, nil
}

type fakeResultCache struct {
	entries map[string]CachedResult
}

func newFakeResultCache() *fakeResultCache {
	return &fakeResultCache{entries: make(map[string]CachedResult)}
}

func (f *fakeResultCache) Get(_ context.Context, fp string) (*CachedResult, error) {
	res, ok := f.entries[fp]
	if !ok {
		return nil, cache.ErrMiss
	}
	cp := res
	return &cp, nil
}

func (f *fakeResultCache) Put(_ context.Context, fp string, res *CachedResult) error {
	f.entries[fp] = *res
	return nil
}

func (f *fakeResultCache) Sweep(_ context.Context, olderThan time.Time) (int, error) {
	removed := 0
	for fp, res := range f.entries {
		if res.CachedAt.Before(olderThan) {
			delete(f.entries, fp)
			removed++
		}
	}
	return removed, nil
}

type fakeGateway struct {
	visionCalls int
	visionText  string
	visionErr   error
}

func (f *fakeGateway) Chat(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return &ai.ChatResponse{Content: "ok"}, nil
}

func (f *fakeGateway) Vision(_ context.Context, req ai.VisionRequest) (*ai.ChatResponse, error) {
	f.visionCalls++
	if f.visionErr != nil {
		return nil, f.visionErr
	}
	return &ai.ChatResponse{Content: f.visionText}, nil
}

func (f *fakeGateway) Embed(_ context.Context, input []string) ([][]float32, error) {
	out := make([][]float32, len(input))
	for i := range input {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func newTestSetup(visionText string) (*Service, *fakeUsers, *fakeHistory, *fakeResultCache, *fakeGateway) {
	users := &fakeUsers{credits: make(map[uuid.UUID]int)}
	history := &fakeHistory{}
	rc := newFakeResultCache()
	gw := &fakeGateway{visionText: visionText}
	svc := NewService(users, history, rc, gw, nil, "vision-model")
	return svc, users, history, rc, gw
}

func freeUser(credits int) *models.User {
	return &models.User{ID: uuid.New(), Tier: models.TierFree, Credits: credits}
}

func pngUpload(name string, payload string) Upload {
	return Upload{FileName: name, Data: []byte(payload)}
}

func TestProcessChargesOnceAndRecordsHistory(t *testing.T) {
	svc, users, history, _, gw := newTestSetup("Invoice total 42")
	u := freeUser(10)
	users.credits[u.ID] = 10

	res, err := svc.Process(context.Background(), u, pngUpload("scan.png", "png-bytes"))
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Equal(t, "Invoice total 42", res.Text)
	require.Equal(t, "en", res.Language)
	require.Equal(t, 0.95, res.Confidence)
	require.Equal(t, 1, res.CreditsCharged)
	require.Equal(t, 9, res.CreditsRemaining)
	require.Equal(t, 1, gw.visionCalls)

	require.Len(t, history.records, 1)
	require.Equal(t, models.OCRStatusCompleted, history.records[0].Status)
	require.Equal(t, 1, history.records[0].CreditsCharged)
}

func TestIdenticalBytesHitCacheAndAreFree(t *testing.T) {
	svc, users, history, _, gw := newTestSetup("extracted")
	u := freeUser(10)
	users.credits[u.ID] = 10

	_, err := svc.Process(context.Background(), u, pngUpload("a.png", "same-bytes"))
	require.NoError(t, err)
	require.Equal(t, 9, users.credits[u.ID])

	u.Credits = 9
	res, err := svc.Process(context.Background(), u, pngUpload("b.png", "same-bytes"))
	require.NoError(t, err)
	require.True(t, res.Cached)
	require.Equal(t, 0, res.CreditsCharged)
	require.Equal(t, 1, gw.visionCalls, "cache hit must not call the model")
	require.Equal(t, 9, users.credits[u.ID], "cache hits are free")

	require.Len(t, history.records, 2)
	require.Equal(t, models.OCRStatusCached, history.records[1].Status)
}

func TestExhaustedCreditsRejectBeforeModelCall(t *testing.T) {
	svc, users, history, _, gw := newTestSetup("x")
	u := freeUser(0)
	users.credits[u.ID] = 0

	_, err := svc.Process(context.Background(), u, pngUpload("scan.png", "bytes"))
	require.Error(t, err)
	require.Equal(t, 402, apierror.From(err).Status)
	require.Equal(t, 0, gw.visionCalls)

	require.Len(t, history.records, 1)
	require.Equal(t, models.OCRStatusFailed, history.records[0].Status)
}

func TestUnlimitedCreditsNeverDecrement(t *testing.T) {
	svc, users, _, _, _ := newTestSetup("x")
	u := &models.User{ID: uuid.New(), Tier: models.TierEnterprise, Credits: models.UnlimitedCredits}
	users.credits[u.ID] = models.UnlimitedCredits

	for i := 0; i < 3; i++ {
		res, err := svc.Process(context.Background(), u, pngUpload("scan.png", string(rune('a'+i))))
		require.NoError(t, err)
		require.Equal(t, 0, res.CreditsCharged)
	}
	require.Equal(t, models.UnlimitedCredits, users.credits[u.ID])
}

func TestOversizedFileRejected(t *testing.T) {
	svc, users, history, _, gw := newTestSetup("x")
	u := freeUser(10)
	users.credits[u.ID] = 10

	big := Upload{FileName: "big.png", Data: make([]byte, MaxFileSize+1)}
	_, err := svc.Process(context.Background(), u, big)
	require.Error(t, err)
	require.Equal(t, 413, apierror.From(err).Status)
	require.Equal(t, 0, gw.visionCalls)
	require.Len(t, history.records, 1)
	require.Equal(t, models.OCRStatusFailed, history.records[0].Status)
}

func TestUnsupportedTypeRejected(t *testing.T) {
	svc, users, _, _, gw := newTestSetup("x")
	u := freeUser(10)
	users.credits[u.ID] = 10

	_, err := svc.Process(context.Background(), u, Upload{FileName: "notes.txt", Data: []byte("text")})
	require.Error(t, err)
	require.Equal(t, 415, apierror.From(err).Status)
	require.Equal(t, 0, gw.visionCalls)
}

func TestVisionFailureRecordsFailedAttempt(t *testing.T) {
	svc, users, history, _, gw := newTestSetup("")
	gw.visionErr = context.DeadlineExceeded
	u := freeUser(10)
	users.credits[u.ID] = 10

	_, err := svc.Process(context.Background(), u, pngUpload("scan.png", "bytes"))
	require.Error(t, err)

	require.Len(t, history.records, 1)
	rec := history.records[0]
	require.Equal(t, models.OCRStatusFailed, rec.Status)
	require.Equal(t, "processing failed", rec.ErrorMessage, "downstream detail must not be stored")
	require.Equal(t, 10, users.credits[u.ID], "failed attempts are not charged")
}

func TestBatchRequiresPaidTier(t *testing.T) {
	svc, users, history, _, _ := newTestSetup("x")
	u := freeUser(10)
	users.credits[u.ID] = 10

	_, _, err := svc.ProcessBatch(context.Background(), u, []Upload{pngUpload("a.png", "a")})
	require.Error(t, err)
	require.Equal(t, 403, apierror.From(err).Status)
	require.Empty(t, history.records, "gate rejection must not create history rows")
}

func TestBatchIsolatesFailures(t *testing.T) {
	svc, users, history, _, _ := newTestSetup("text")
	u := &models.User{ID: uuid.New(), Tier: models.TierProfessional, Credits: 100}
	users.credits[u.ID] = 100

	uploads := []Upload{
		pngUpload("ok.png", "fine"),
		{FileName: "bad.exe", Data: []byte("nope")},
		pngUpload("ok2.png", "also fine"),
	}
	results, failures, err := svc.ProcessBatch(context.Background(), u, uploads)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, failures, 1)
	require.Equal(t, "bad.exe", failures[0].FileName)
	require.Len(t, history.records, 3)
}

func TestBatchSizeLimit(t *testing.T) {
	svc, _, _, _, _ := newTestSetup("x")
	u := &models.User{ID: uuid.New(), Tier: models.TierEnterprise, Credits: models.UnlimitedCredits}

	uploads := make([]Upload, MaxBatchSize+1)
	for i := range uploads {
		uploads[i] = pngUpload("f.png", "data")
	}
	_, _, err := svc.ProcessBatch(context.Background(), u, uploads)
	require.Error(t, err)
	require.Equal(t, 400, apierror.From(err).Status)
}

func TestSweepRemovesOnlyStaleEntries(t *testing.T) {
	rc := newFakeResultCache()
	now := time.Now().UTC()
	rc.entries["old"] = CachedResult{CachedAt: now.Add(-8 * 24 * time.Hour)}
	rc.entries["fresh"] = CachedResult{CachedAt: now.Add(-time.Hour)}

	removed, err := rc.Sweep(context.Background(), now.Add(-CacheTTL))
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	_, ok := rc.entries["fresh"]
	require.True(t, ok)
}
