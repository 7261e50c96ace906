package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/models"
	"github.com/brainsait/docuscan/internal/repository"
)

type fakeUserStore struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	cp := *u
	f.byID[u.ID] = &cp
	f.byEmail[u.Email] = &cp
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.byID {
		if token != "" && u.ResetToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	now := time.Now()
	f.byID[id].LastLoginAt = &now
	return nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id uuid.UUID, fullName, phone, avatarURL string) error {
	u := f.byID[id]
	u.FullName, u.Phone, u.AvatarURL = fullName, phone, avatarURL
	return nil
}

func (f *fakeUserStore) SetResetToken(_ context.Context, id uuid.UUID, token string, expires time.Time) error {
	u := f.byID[id]
	u.ResetToken = token
	u.ResetTokenExpires = &expires
	return nil
}

func (f *fakeUserStore) ResetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	u := f.byID[id]
	u.PasswordHash = passwordHash
	u.ResetToken = ""
	u.ResetTokenExpires = nil
	return nil
}

func (f *fakeUserStore) ConsumeCredit(_ context.Context, id uuid.UUID) (int, error) {
	u := f.byID[id]
	if u.Credits <= 0 {
		return 0, repository.ErrNoCredits
	}
	u.Credits--
	return u.Credits, nil
}

func (f *fakeUserStore) ApplyUpgrade(_ context.Context, id uuid.UUID, tier models.Tier, credits int, start, end time.Time) error {
	u := f.byID[id]
	u.Tier = tier
	if credits < 0 {
		u.Credits = models.UnlimitedCredits
	} else {
		u.Credits += credits
	}
	u.SubscriptionStart = &start
	u.SubscriptionEnd = &end
	return nil
}

type fakeDenylist struct {
	revoked map[string]bool
}

func newFakeDenylist() *fakeDenylist { return &fakeDenylist{revoked: make(map[string]bool)} }

func (f *fakeDenylist) Revoke(_ context.Context, token string, _ time.Duration) error {
	f.revoked[token] = true
	return nil
}

func (f *fakeDenylist) IsRevoked(_ context.Context, token string) (bool, error) {
	return f.revoked[token], nil
}

func newTestService() (*Service, *fakeUserStore, *fakeDenylist) {
	users := newFakeUserStore()
	denylist := newFakeDenylist()
	return NewService(users, denylist, "test-secret"), users, denylist
}

func TestRegisterVerifyRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	u, token, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)
	require.Equal(t, models.TierFree, u.Tier)
	require.Equal(t, 10, u.Credits)

	userID, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "a@example.com", "password456", "B", "")
	require.Error(t, err)
	require.Equal(t, 409, apierror.From(err).Status)
}

func TestLoginConstantShapeFailure(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(ctx, "missing@example.com", "whatever1")
	_, _, wrongErr := svc.Login(ctx, "a@example.com", "wrongpass1")

	// Unknown email and wrong password must be indistinguishable.
	require.Equal(t, apierror.From(unknownErr).Status, apierror.From(wrongErr).Status)
	require.Equal(t, apierror.From(unknownErr).Message, apierror.From(wrongErr).Message)
}

func TestLoginSuccessUpdatesLastLogin(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, "a@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Verify(ctx, token)
	require.Error(t, err)
	require.Equal(t, 401, apierror.From(err).Status)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc, _, _ := newTestService()
	other := NewService(newFakeUserStore(), newFakeDenylist(), "other-secret")
	ctx := context.Background()

	_, token, err := other.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token)
	require.Error(t, err)
	require.Equal(t, 401, apierror.From(err).Status)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	// Unknown email gets the same generic success.
	require.NoError(t, svc.RequestPasswordReset(ctx, "missing@example.com"))
	require.NoError(t, svc.RequestPasswordReset(ctx, "a@example.com"))

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetToken)

	require.NoError(t, svc.ResetPassword(ctx, stored.ResetToken, "newpassword1"))

	// Token is single-use.
	err = svc.ResetPassword(ctx, stored.ResetToken, "anotherpass1")
	require.Error(t, err)
	require.Equal(t, 400, apierror.From(err).Status)

	_, _, err = svc.Login(ctx, "a@example.com", "newpassword1")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "a@example.com", "password123")
	require.Error(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, users, _ := newTestService()
	ctx := context.Background()

	u, _, err := svc.Register(ctx, "a@example.com", "password123", "A", "")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, users.SetResetToken(ctx, u.ID, "stale-token", expired))

	err = svc.ResetPassword(ctx, "stale-token", "newpassword1")
	require.Error(t, err)
	require.Equal(t, 400, apierror.From(err).Status)
}
