package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"meritboard/internal/events"
	"meritboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAwardRepo implements repositories.AwardRepository.
type fakeAwardRepo struct {
	hasAwardFn    func(ctx context.Context, userID, badgeID int64, contentType string, objectID int64) (bool, error)
	getRecentFn   func(ctx context.Context, limit int) ([]*models.Award, error)
	recentCalls   int
	createdAwards []*models.Award
}

func (f *fakeAwardRepo) Create(ctx context.Context, award *models.Award) error {
	award.ID = int64(len(f.createdAwards) + 1)
	award.AwardedAt = time.Now()
	f.createdAwards = append(f.createdAwards, award)
	return nil
}

func (f *fakeAwardRepo) GetByID(ctx context.Context, id int64) (*models.Award, error) {
	return nil, nil
}

func (f *fakeAwardRepo) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	return &models.PaginatedResponse[*models.Award]{}, nil
}

func (f *fakeAwardRepo) GetRecent(ctx context.Context, limit int) ([]*models.Award, error) {
	f.recentCalls++
	if f.getRecentFn != nil {
		return f.getRecentFn(ctx, limit)
	}
	return nil, nil
}

func (f *fakeAwardRepo) HasAward(ctx context.Context, userID, badgeID int64, contentType string, objectID int64) (bool, error) {
	if f.hasAwardFn != nil {
		return f.hasAwardFn(ctx, userID, badgeID, contentType, objectID)
	}
	return false, nil
}

func (f *fakeAwardRepo) GetUnnotified(ctx context.Context, userID int64) ([]*models.Award, error) {
	return nil, nil
}

func (f *fakeAwardRepo) MarkNotified(ctx context.Context, userID int64) (int64, error) {
	return 0, nil
}

// fakeBadgeRepo implements repositories.BadgeRepository.
type fakeBadgeRepo struct {
	rows    map[string]*models.BadgeData
	listFn  func(ctx context.Context) ([]*models.BadgeData, error)
	usersFn func(ctx context.Context, badgeID int64) ([]int64, error)
}

func (f *fakeBadgeRepo) Create(ctx context.Context, badge *models.BadgeData) error { return nil }

func (f *fakeBadgeRepo) GetByID(ctx context.Context, id int64) (*models.BadgeData, error) {
	return nil, nil
}

func (f *fakeBadgeRepo) GetBySlug(ctx context.Context, slug string) (*models.BadgeData, error) {
	return f.rows[slug], nil
}

func (f *fakeBadgeRepo) GetOrCreateBySlug(ctx context.Context, slug string) (*models.BadgeData, error) {
	if row, ok := f.rows[slug]; ok {
		return row, nil
	}
	if f.rows == nil {
		f.rows = map[string]*models.BadgeData{}
	}
	row := &models.BadgeData{ID: int64(len(f.rows) + 1), Slug: slug}
	f.rows[slug] = row
	return row, nil
}

func (f *fakeBadgeRepo) List(ctx context.Context) ([]*models.BadgeData, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeBadgeRepo) GetAwardedUserIDs(ctx context.Context, badgeID int64) ([]int64, error) {
	if f.usersFn != nil {
		return f.usersFn(ctx, badgeID)
	}
	return nil, nil
}

// fakeCache is a JSON round-tripping in-memory cache.
type fakeCache struct {
	entries map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.deletes = append(c.deletes, key)
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Close() error { return nil }

func newTestAwardService(t *testing.T, awardRepo *fakeAwardRepo, badgeRepo *fakeBadgeRepo, cacheInstance *fakeCache) AwardService {
	t.Helper()
	bus := events.NewBus(8, zap.NewNop())
	t.Cleanup(bus.Close)
	return NewAwardService(awardRepo, badgeRepo, cacheInstance, bus, zap.NewNop())
}

func TestAwardService_AwardBadge(t *testing.T) {
	t.Run("awards a registered badge and invalidates the digest", func(t *testing.T) {
		awardRepo := &fakeAwardRepo{}
		cacheInstance := newFakeCache()
		svc := newTestAwardService(t, awardRepo, &fakeBadgeRepo{}, cacheInstance)

		award, err := svc.AwardBadge(context.Background(), &AwardBadgeRequest{
			UserID:      7,
			BadgeSlug:   "teacher",
			ContentType: "answer",
			ObjectID:    42,
		})
		require.NoError(t, err)
		assert.Equal(t, "teacher", award.BadgeSlug)
		assert.NotZero(t, award.ID)
		assert.Contains(t, cacheInstance.deletes, recentAwardsCacheKey)
	})

	t.Run("unregistered slug is refused", func(t *testing.T) {
		svc := newTestAwardService(t, &fakeAwardRepo{}, &fakeBadgeRepo{}, newFakeCache())

		_, err := svc.AwardBadge(context.Background(), &AwardBadgeRequest{
			UserID:      7,
			BadgeSlug:   "no-such-badge",
			ContentType: "answer",
			ObjectID:    42,
		})
		require.Error(t, err)
		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "UNKNOWN_BADGE", svcErr.Code)
	})

	t.Run("duplicate award is a conflict", func(t *testing.T) {
		awardRepo := &fakeAwardRepo{
			hasAwardFn: func(ctx context.Context, userID, badgeID int64, contentType string, objectID int64) (bool, error) {
				return true, nil
			},
		}
		svc := newTestAwardService(t, awardRepo, &fakeBadgeRepo{}, newFakeCache())

		_, err := svc.AwardBadge(context.Background(), &AwardBadgeRequest{
			UserID:      7,
			BadgeSlug:   "teacher",
			ContentType: "answer",
			ObjectID:    42,
		})
		require.Error(t, err)
		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, "DUPLICATE_AWARD", svcErr.Code)
		assert.Empty(t, awardRepo.createdAwards)
	})
}

func TestAwardService_GetRecentAwards(t *testing.T) {
	recent := []*models.Award{
		{ID: 2, UserID: 7, BadgeID: 3, BadgeSlug: "guru", Username: "alice", ContentType: "answer", ObjectID: 42, AwardedAt: time.Now()},
		{ID: 1, UserID: 5, BadgeID: 2, BadgeSlug: "retired-badge", Username: "bob", ContentType: "question", ObjectID: 17, AwardedAt: time.Now().Add(-time.Minute)},
	}

	t.Run("resolves registry metadata and caches the digest", func(t *testing.T) {
		awardRepo := &fakeAwardRepo{
			getRecentFn: func(ctx context.Context, limit int) ([]*models.Award, error) {
				return recent, nil
			},
		}
		cacheInstance := newFakeCache()
		svc := newTestAwardService(t, awardRepo, &fakeBadgeRepo{}, cacheInstance)

		digest, err := svc.GetRecentAwards(context.Background(), 2)
		require.NoError(t, err)
		require.Len(t, digest, 2)
		assert.Equal(t, "Guru", digest[0].BadgeName)
		assert.Equal(t, "gold", digest[0].BadgeLevel)
		// Unregistered slug resolves to a placeholder, not an error.
		assert.Empty(t, digest[1].BadgeName)
		assert.Equal(t, "bronze", digest[1].BadgeLevel)

		assert.Contains(t, cacheInstance.entries, recentAwardsCacheKey)
	})

	t.Run("serves from cache when fresh", func(t *testing.T) {
		awardRepo := &fakeAwardRepo{
			getRecentFn: func(ctx context.Context, limit int) ([]*models.Award, error) {
				return recent, nil
			},
		}
		cacheInstance := newFakeCache()
		svc := newTestAwardService(t, awardRepo, &fakeBadgeRepo{}, cacheInstance)

		_, err := svc.GetRecentAwards(context.Background(), 2)
		require.NoError(t, err)
		_, err = svc.GetRecentAwards(context.Background(), 2)
		require.NoError(t, err)

		assert.Equal(t, 1, awardRepo.recentCalls)
	})
}

func TestAwardService_AcknowledgeAwards(t *testing.T) {
	svc := newTestAwardService(t, &fakeAwardRepo{}, &fakeBadgeRepo{}, newFakeCache())

	_, err := svc.AcknowledgeAwards(context.Background(), 0)
	require.Error(t, err)
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", svcErr.Type)
}
