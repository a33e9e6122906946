package service

import (
	"context"
	"testing"
	"time"

	"github.com/garyjia/courier-billing/internal/domain/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotProvider_CachesUntilTTL(t *testing.T) {
	repo := &fakeConfigRepo{cfg: testConfig()}
	p := NewSnapshotProvider(repo, time.Minute, nopLogger{}).(*cachedSnapshotProvider)

	now := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }
	ctx := context.Background()

	first, err := p.Get(ctx, testFranchise)
	require.NoError(t, err)
	second, err := p.Get(ctx, testFranchise)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, repo.loadCount())

	now = now.Add(2 * time.Minute)
	third, err := p.Get(ctx, testFranchise)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.loadCount())
	assert.Equal(t, first.Version(), third.Version())

	p.Invalidate(testFranchise)
	_, err = p.Get(ctx, testFranchise)
	require.NoError(t, err)
	assert.Equal(t, 3, repo.loadCount())

	p.InvalidateAll()
	_, err = p.Get(ctx, testFranchise)
	require.NoError(t, err)
	assert.Equal(t, 4, repo.loadCount())
}

func TestSnapshotProvider_ZeroTTLAlwaysReloads(t *testing.T) {
	repo := &fakeConfigRepo{cfg: testConfig()}
	p := NewSnapshotProvider(repo, 0, nopLogger{})

	for i := 0; i < 3; i++ {
		_, err := p.Get(context.Background(), testFranchise)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.loadCount())
}

func TestSnapshotProvider_Errors(t *testing.T) {
	repo := &fakeConfigRepo{cfg: testConfig()}
	p := NewSnapshotProvider(repo, time.Minute, nopLogger{})

	_, err := p.Get(context.Background(), 5)
	assert.ErrorIs(t, err, ErrFranchiseNotFound)

	broken := testConfig()
	broken.Discounts[0].Condition = `{"attr":"colour","op":"eq","value":"red"}`
	repo.cfg = broken

	_, err = p.Get(context.Background(), testFranchise)
	require.Error(t, err)
	assert.ErrorIs(t, err, rating.ErrDiscountConditionInvalid)
	assert.Equal(t, "discount_condition_invalid", ErrorCode(err))
}
