// file: internal/repositories/award_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"meritboard/internal/database"
	"meritboard/internal/models"

	"go.uber.org/zap"
)

// awardRepository implements AwardRepository
type awardRepository struct {
	*BaseRepository
}

// NewAwardRepository creates a new award repository
func NewAwardRepository(db *database.Manager, logger *zap.Logger) AwardRepository {
	return &awardRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create inserts the award and bumps the badge's awarded_count in one
// transaction so the counter never drifts from the award rows.
func (r *awardRepository) Create(ctx context.Context, award *models.Award) error {
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		insertQuery := `
			INSERT INTO awards (user_id, badge_id, content_type, object_id, awarded_at, notified)
			VALUES ($1, $2, $3, $4, COALESCE($5, now()), $6)
			RETURNING id, awarded_at`

		var awardedAt sql.NullTime
		if !award.AwardedAt.IsZero() {
			awardedAt = sql.NullTime{Time: award.AwardedAt, Valid: true}
		}

		err := tx.QueryRowContext(ctx, insertQuery,
			award.UserID, award.BadgeID, award.ContentType, award.ObjectID,
			awardedAt, award.Notified,
		).Scan(&award.ID, &award.AwardedAt)
		if err != nil {
			return fmt.Errorf("failed to insert award: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE badges SET awarded_count = awarded_count + 1 WHERE id = $1`,
			award.BadgeID,
		)
		if err != nil {
			return fmt.Errorf("failed to increment awarded count: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.GetLogger().Info("Badge awarded",
		zap.Int64("award_id", award.ID),
		zap.Int64("user_id", award.UserID),
		zap.Int64("badge_id", award.BadgeID),
	)
	return nil
}

// GetByID retrieves an award by ID
func (r *awardRepository) GetByID(ctx context.Context, id int64) (*models.Award, error) {
	query := `
		SELECT a.id, a.user_id, a.badge_id, a.content_type, a.object_id,
			a.awarded_at, a.notified, b.slug, u.username
		FROM awards a
		JOIN badges b ON b.id = a.badge_id
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`

	var award models.Award
	err := r.QueryRowContext(ctx, query, id).Scan(
		&award.ID, &award.UserID, &award.BadgeID,
		&award.ContentType, &award.ObjectID,
		&award.AwardedAt, &award.Notified,
		&award.BadgeSlug, &award.Username,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get award by ID: %w", err)
	}
	return &award, nil
}

// GetByUserID returns the user's awards, newest first.
func (r *awardRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error) {
	params.Normalize()

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM awards WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count awards: %w", err)
	}

	query := `
		SELECT a.id, a.user_id, a.badge_id, a.content_type, a.object_id,
			a.awarded_at, a.notified, b.slug, u.username
		FROM awards a
		JOIN badges b ON b.id = a.badge_id
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		ORDER BY a.awarded_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get awards by user: %w", err)
	}
	defer rows.Close()

	awards, err := scanAwards(rows)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*models.Award]{
		Data:       awards,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// GetRecent returns the newest awards across all users joined with
// badge slug and username.
func (r *awardRepository) GetRecent(ctx context.Context, limit int) ([]*models.Award, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT a.id, a.user_id, a.badge_id, a.content_type, a.object_id,
			a.awarded_at, a.notified, b.slug, u.username
		FROM awards a
		JOIN badges b ON b.id = a.badge_id
		JOIN users u ON u.id = a.user_id
		ORDER BY a.awarded_at DESC
		LIMIT $1`

	rows, err := r.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent awards: %w", err)
	}
	defer rows.Close()

	return scanAwards(rows)
}

// HasAward reports whether the user already holds the badge for the
// given content object.
func (r *awardRepository) HasAward(ctx context.Context, userID, badgeID int64, contentType string, objectID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM awards
			WHERE user_id = $1 AND badge_id = $2 AND content_type = $3 AND object_id = $4
		)`

	var exists bool
	err := r.QueryRowContext(ctx, query, userID, badgeID, contentType, objectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check award existence: %w", err)
	}
	return exists, nil
}

// GetUnnotified returns the user's awards not yet surfaced to them.
func (r *awardRepository) GetUnnotified(ctx context.Context, userID int64) ([]*models.Award, error) {
	query := `
		SELECT a.id, a.user_id, a.badge_id, a.content_type, a.object_id,
			a.awarded_at, a.notified, b.slug, u.username
		FROM awards a
		JOIN badges b ON b.id = a.badge_id
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1 AND a.notified = false
		ORDER BY a.awarded_at`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get unnotified awards: %w", err)
	}
	defer rows.Close()

	return scanAwards(rows)
}

// MarkNotified flags all of the user's awards as seen and returns how
// many rows changed.
func (r *awardRepository) MarkNotified(ctx context.Context, userID int64) (int64, error) {
	result, err := r.ExecContext(ctx,
		`UPDATE awards SET notified = true WHERE user_id = $1 AND notified = false`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark awards notified: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

func scanAwards(rows *sql.Rows) ([]*models.Award, error) {
	var awards []*models.Award
	for rows.Next() {
		var award models.Award
		err := rows.Scan(
			&award.ID, &award.UserID, &award.BadgeID,
			&award.ContentType, &award.ObjectID,
			&award.AwardedAt, &award.Notified,
			&award.BadgeSlug, &award.Username,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan award: %w", err)
		}
		awards = append(awards, &award)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate awards: %w", err)
	}
	return awards, nil
}
