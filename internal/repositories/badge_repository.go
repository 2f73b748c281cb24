// file: internal/repositories/badge_repository.go
package repositories

import (
	"context"
	"fmt"

	"meritboard/internal/database"
	"meritboard/internal/models"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts a badge row with a zero award counter.
func (r *badgeRepository) Create(ctx context.Context, badge *models.BadgeData) error {
	query := `
		INSERT INTO badges (slug, awarded_count)
		VALUES ($1, $2)
		RETURNING id`

	err := r.QueryRowContext(ctx, query, badge.Slug, badge.AwardedCount).Scan(&badge.ID)
	if err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}

	r.GetLogger().Info("Badge created",
		zap.Int64("badge_id", badge.ID),
		zap.String("slug", badge.Slug),
	)
	return nil
}

// GetByID retrieves a badge by ID
func (r *badgeRepository) GetByID(ctx context.Context, id int64) (*models.BadgeData, error) {
	query := `SELECT id, slug, awarded_count FROM badges WHERE id = $1`

	var badge models.BadgeData
	err := r.QueryRowContext(ctx, query, id).Scan(&badge.ID, &badge.Slug, &badge.AwardedCount)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by ID: %w", err)
	}
	return &badge, nil
}

// GetBySlug retrieves a badge by its unique slug
func (r *badgeRepository) GetBySlug(ctx context.Context, slug string) (*models.BadgeData, error) {
	query := `SELECT id, slug, awarded_count FROM badges WHERE slug = $1`

	var badge models.BadgeData
	err := r.QueryRowContext(ctx, query, slug).Scan(&badge.ID, &badge.Slug, &badge.AwardedCount)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get badge by slug: %w", err)
	}
	return &badge, nil
}

// GetOrCreateBySlug returns the row for slug, inserting it on first use.
// The upsert keeps concurrent first awards of the same badge from racing.
func (r *badgeRepository) GetOrCreateBySlug(ctx context.Context, slug string) (*models.BadgeData, error) {
	query := `
		INSERT INTO badges (slug, awarded_count)
		VALUES ($1, 0)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, slug, awarded_count`

	var badge models.BadgeData
	err := r.QueryRowContext(ctx, query, slug).Scan(&badge.ID, &badge.Slug, &badge.AwardedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create badge: %w", err)
	}
	return &badge, nil
}

// List returns all badge rows ordered by slug.
func (r *badgeRepository) List(ctx context.Context) ([]*models.BadgeData, error) {
	query := `SELECT id, slug, awarded_count FROM badges ORDER BY slug`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*models.BadgeData
	for rows.Next() {
		var badge models.BadgeData
		if err := rows.Scan(&badge.ID, &badge.Slug, &badge.AwardedCount); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &badge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badges: %w", err)
	}
	return badges, nil
}

// GetAwardedUserIDs returns the distinct users holding the badge.
func (r *badgeRepository) GetAwardedUserIDs(ctx context.Context, badgeID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT user_id
		FROM awards
		WHERE badge_id = $1
		ORDER BY user_id`

	rows, err := r.QueryContext(ctx, query, badgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get awarded users: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user ids: %w", err)
	}
	return userIDs, nil
}
