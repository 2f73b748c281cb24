package services

import (
	"context"
	"fmt"
	"time"

	"meritboard/internal/badges"
	"meritboard/internal/cache"
	"meritboard/internal/events"
	"meritboard/internal/models"
	"meritboard/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	recentAwardsCacheKey = "awards:recent"
	recentAwardsCacheTTL = time.Minute
)

// AwardService handles badge awarding and the awards digest.
type AwardService interface {
	AwardBadge(ctx context.Context, req *AwardBadgeRequest) (*models.Award, error)
	GetUserAwards(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)
	GetRecentAwards(ctx context.Context, limit int) ([]*AwardDigestEntry, error)
	GetPendingNotifications(ctx context.Context, userID int64) ([]*models.Award, error)
	AcknowledgeAwards(ctx context.Context, userID int64) (int64, error)
}

type awardService struct {
	awardRepo repositories.AwardRepository
	badgeRepo repositories.BadgeRepository
	cache     cache.Cache
	bus       *events.Bus
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAwardService creates a new award service
func NewAwardService(
	awardRepo repositories.AwardRepository,
	badgeRepo repositories.BadgeRepository,
	cacheInstance cache.Cache,
	bus *events.Bus,
	logger *zap.Logger,
) AwardService {
	return &awardService{
		awardRepo: awardRepo,
		badgeRepo: badgeRepo,
		cache:     cacheInstance,
		bus:       bus,
		validate:  validator.New(),
		logger:    logger,
	}
}

// AwardBadge awards a registered badge to a user for a content object.
// The badge row is created on first award; awarding the same badge for
// the same content object twice is a conflict.
func (s *awardService) AwardBadge(ctx context.Context, req *AwardBadgeRequest) (*models.Award, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid award request", err)
	}

	if !badges.IsRegistered(req.BadgeSlug) {
		return nil, NewBusinessError(
			fmt.Sprintf("badge %q is not registered", req.BadgeSlug),
			"UNKNOWN_BADGE",
		)
	}

	badge, err := s.badgeRepo.GetOrCreateBySlug(ctx, req.BadgeSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve badge row: %w", err)
	}

	exists, err := s.awardRepo.HasAward(ctx, req.UserID, badge.ID, req.ContentType, req.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate award: %w", err)
	}
	if exists {
		return nil, NewConflictError("badge already awarded for this content", "DUPLICATE_AWARD")
	}

	award := &models.Award{
		UserID:      req.UserID,
		BadgeID:     badge.ID,
		ContentType: req.ContentType,
		ObjectID:    req.ObjectID,
	}
	if err := s.awardRepo.Create(ctx, award); err != nil {
		return nil, fmt.Errorf("failed to create award: %w", err)
	}
	award.BadgeSlug = badge.Slug

	// The digest is stale now; drop it rather than waiting out the TTL.
	if err := s.cache.Delete(ctx, recentAwardsCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate recent awards cache", zap.Error(err))
	}

	event := events.NewBadgeAwardedEvent(award.ID, award.UserID, badge.Slug, award.ContentType, award.ObjectID)
	if err := s.bus.Publish(event); err != nil {
		s.logger.Warn("Failed to publish badge awarded event", zap.Error(err))
	}

	return award, nil
}

// GetUserAwards returns the user's awards, newest first.
func (s *awardService) GetUserAwards(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	if userID <= 0 {
		return nil, NewValidationError("user id must be positive", nil)
	}
	return s.awardRepo.GetByUserID(ctx, userID, params)
}

// GetRecentAwards returns the newest awards across all users with badge
// metadata resolved, served from cache when fresh.
func (s *awardService) GetRecentAwards(ctx context.Context, limit int) ([]*AwardDigestEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var cached []*AwardDigestEntry
	hit, err := s.cache.Get(ctx, recentAwardsCacheKey, &cached)
	if err != nil {
		s.logger.Warn("Recent awards cache read failed", zap.Error(err))
	}
	if hit && len(cached) >= limit {
		return cached[:limit], nil
	}

	awards, err := s.awardRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent awards: %w", err)
	}

	digest := make([]*AwardDigestEntry, 0, len(awards))
	for _, award := range awards {
		meta := badges.GetOrPlaceholder(award.BadgeSlug)
		digest = append(digest, &AwardDigestEntry{
			AwardID:     award.ID,
			UserID:      award.UserID,
			Username:    award.Username,
			BadgeID:     award.BadgeID,
			BadgeSlug:   award.BadgeSlug,
			BadgeName:   meta.Name,
			BadgeLevel:  meta.LevelDisplay(),
			ContentType: award.ContentType,
			ObjectID:    award.ObjectID,
			AwardedAt:   award.AwardedAt,
		})
	}

	if err := s.cache.Set(ctx, recentAwardsCacheKey, digest, recentAwardsCacheTTL); err != nil {
		s.logger.Warn("Recent awards cache write failed", zap.Error(err))
	}
	return digest, nil
}

// GetPendingNotifications returns the user's awards not yet shown to
// them.
func (s *awardService) GetPendingNotifications(ctx context.Context, userID int64) ([]*models.Award, error) {
	if userID <= 0 {
		return nil, NewValidationError("user id must be positive", nil)
	}
	return s.awardRepo.GetUnnotified(ctx, userID)
}

// AcknowledgeAwards marks all of the user's awards as seen.
func (s *awardService) AcknowledgeAwards(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, NewValidationError("user id must be positive", nil)
	}
	return s.awardRepo.MarkNotified(ctx, userID)
}
