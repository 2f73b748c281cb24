package services

import (
	"context"
	"fmt"

	"meritboard/internal/badges"
	"meritboard/internal/models"
	"meritboard/internal/repositories"

	"go.uber.org/zap"
)

// BadgeService exposes badge rows merged with registry metadata.
type BadgeService interface {
	ListBadges(ctx context.Context) ([]*BadgeView, error)
	GetBadge(ctx context.Context, slug string) (*BadgeView, error)
	GetBadgeRecipients(ctx context.Context, slug string) ([]int64, error)
}

type badgeService struct {
	badgeRepo repositories.BadgeRepository
	logger    *zap.Logger
}

// NewBadgeService creates a new badge service
func NewBadgeService(badgeRepo repositories.BadgeRepository, logger *zap.Logger) BadgeService {
	return &badgeService{badgeRepo: badgeRepo, logger: logger}
}

// ListBadges returns every badge row, ordered by slug, with display
// metadata resolved through the registry. Rows whose slug is no longer
// registered come back as placeholders rather than being dropped.
func (s *badgeService) ListBadges(ctx context.Context) ([]*BadgeView, error) {
	rows, err := s.badgeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	views := make([]*BadgeView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newBadgeView(row))
	}
	return views, nil
}

// GetBadge returns one badge row with resolved metadata.
func (s *badgeService) GetBadge(ctx context.Context, slug string) (*BadgeView, error) {
	row, err := s.badgeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}
	if row == nil {
		return nil, NewNotFoundError(fmt.Sprintf("badge %q not found", slug))
	}
	return newBadgeView(row), nil
}

// GetBadgeRecipients returns the distinct users holding the badge.
func (s *badgeService) GetBadgeRecipients(ctx context.Context, slug string) ([]int64, error) {
	row, err := s.badgeRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge: %w", err)
	}
	if row == nil {
		return nil, NewNotFoundError(fmt.Sprintf("badge %q not found", slug))
	}
	return s.badgeRepo.GetAwardedUserIDs(ctx, row.ID)
}

func newBadgeView(row *models.BadgeData) *BadgeView {
	meta := badges.GetOrPlaceholder(row.Slug)
	return &BadgeView{
		ID:           row.ID,
		Slug:         row.Slug,
		Name:         meta.Name,
		Description:  meta.Description,
		CSSClass:     meta.CSSClass,
		Level:        meta.LevelDisplay(),
		AwardedCount: row.AwardedCount,
		Real:         badges.IsRegistered(row.Slug),
	}
}
