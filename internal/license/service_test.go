package license

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryLicenseRepo struct {
	active *License
	nextID int64
	reads  int
}

func (r *memoryLicenseRepo) GetActive(ctx context.Context) (*License, error) {
	r.reads++
	if r.active == nil {
		return nil, ErrNoLicense
	}
	lic := *r.active
	return &lic, nil
}

func (r *memoryLicenseRepo) Activate(ctx context.Context, lic License) (int64, error) {
	r.nextID++
	lic.ID = r.nextID
	r.active = &lic
	return lic.ID, nil
}

func newTestLicenseService(repo *memoryLicenseRepo, now time.Time) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return now }
	return svc
}

func TestEvaluateNoLicense(t *testing.T) {
	svc := newTestLicenseService(&memoryLicenseRepo{}, time.Now())
	_, err := svc.Evaluate(context.Background())
	require.ErrorIs(t, err, ErrNoLicense)
}

func TestStatusServesCachedEvaluation(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := &memoryLicenseRepo{}
	_, err := repo.Activate(context.Background(), License{
		Key: "b1946ac9-2a4e-4bb0-98ab-614fd7a6bc12", Kind: KindTrial,
		IssuedAt: now, WindowDays: 30,
	})
	require.NoError(t, err)
	repo.reads = 0

	svc := newTestLicenseService(repo, now)

	first, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateValid, first.State)

	second, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.reads)
}

func TestActivateGeneratesKeyAndRetiresCache(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := &memoryLicenseRepo{}
	svc := newTestLicenseService(repo, now)

	lic, err := svc.Activate(context.Background(), ActivateInput{WindowDays: 30})
	require.NoError(t, err)
	require.NotEmpty(t, lic.Key)
	require.Equal(t, KindTrial, lic.Kind)

	eval, err := svc.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateValid, eval.State)
	require.Equal(t, 30, eval.DaysRemaining)
}

func TestActivateValidation(t *testing.T) {
	svc := newTestLicenseService(&memoryLicenseRepo{}, time.Now())

	_, err := svc.Activate(context.Background(), ActivateInput{Key: "not-a-uuid", WindowDays: 10})
	require.Error(t, err)

	_, err = svc.Activate(context.Background(), ActivateInput{})
	require.Error(t, err)

	lic, err := svc.Activate(context.Background(), ActivateInput{Unlimited: true})
	require.NoError(t, err)
	require.Equal(t, KindFull, lic.Kind)
}
