// file: internal/repositories/repute_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meritboard/internal/database"
	"meritboard/internal/models"

	"go.uber.org/zap"
)

// reputeRepository implements ReputeRepository
type reputeRepository struct {
	*BaseRepository
}

// NewReputeRepository creates a new reputation ledger repository
func NewReputeRepository(db *database.Manager, logger *zap.Logger) ReputeRepository {
	return &reputeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Create appends one entry to the reputation ledger.
func (r *reputeRepository) Create(ctx context.Context, repute *models.Repute) error {
	if err := repute.Validate(); err != nil {
		return fmt.Errorf("invalid repute entry: %w", err)
	}

	query := `
		INSERT INTO reputes (user_id, positive, negative, question_id,
			reputed_at, reputation_type, reputation, comment)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), $6, $7, $8)
		RETURNING id, reputed_at`

	var reputedAt sql.NullTime
	if !repute.ReputedAt.IsZero() {
		reputedAt = sql.NullTime{Time: repute.ReputedAt, Valid: true}
	}

	err := r.QueryRowContext(ctx, query,
		repute.UserID, repute.Positive, repute.Negative, repute.QuestionID,
		reputedAt, repute.ReputationType, repute.Reputation, repute.Comment,
	).Scan(&repute.ID, &repute.ReputedAt)
	if err != nil {
		return fmt.Errorf("failed to create repute entry: %w", err)
	}

	r.GetLogger().Info("Reputation entry recorded",
		zap.Int64("repute_id", repute.ID),
		zap.Int64("user_id", repute.UserID),
		zap.String("reputation_type", repute.ReputationType.String()),
		zap.Int("reputation", repute.Reputation),
	)
	return nil
}

// GetByID retrieves a ledger entry with its joined username and
// question title.
func (r *reputeRepository) GetByID(ctx context.Context, id int64) (*models.Repute, error) {
	query := `
		SELECT r.id, r.user_id, r.positive, r.negative, r.question_id,
			r.reputed_at, r.reputation_type, r.reputation, r.comment,
			u.username, q.title
		FROM reputes r
		JOIN users u ON u.id = r.user_id
		LEFT JOIN questions q ON q.id = r.question_id
		WHERE r.id = $1`

	var repute models.Repute
	err := r.QueryRowContext(ctx, query, id).Scan(
		&repute.ID, &repute.UserID, &repute.Positive, &repute.Negative,
		&repute.QuestionID, &repute.ReputedAt, &repute.ReputationType,
		&repute.Reputation, &repute.Comment,
		&repute.Username, &repute.QuestionTitle,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get repute by ID: %w", err)
	}
	return &repute, nil
}

// GetByUserID returns the user's reputation history, newest first.
func (r *reputeRepository) GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Repute], error) {
	params.Normalize()

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM reputes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count repute entries: %w", err)
	}

	query := `
		SELECT r.id, r.user_id, r.positive, r.negative, r.question_id,
			r.reputed_at, r.reputation_type, r.reputation, r.comment,
			u.username, q.title
		FROM reputes r
		JOIN users u ON u.id = r.user_id
		LEFT JOIN questions q ON q.id = r.question_id
		WHERE r.user_id = $1
		ORDER BY r.reputed_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get repute history: %w", err)
	}
	defer rows.Close()

	var reputes []*models.Repute
	for rows.Next() {
		var repute models.Repute
		err := rows.Scan(
			&repute.ID, &repute.UserID, &repute.Positive, &repute.Negative,
			&repute.QuestionID, &repute.ReputedAt, &repute.ReputationType,
			&repute.Reputation, &repute.Comment,
			&repute.Username, &repute.QuestionTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan repute: %w", err)
		}
		reputes = append(reputes, &repute)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reputes: %w", err)
	}

	return &models.PaginatedResponse[*models.Repute]{
		Data:       reputes,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// GetLatestReputation returns the running reputation of the newest
// entry, or the floor value when the ledger is empty.
func (r *reputeRepository) GetLatestReputation(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT reputation FROM reputes
		WHERE user_id = $1
		ORDER BY reputed_at DESC, id DESC
		LIMIT 1`

	var reputation int
	err := r.QueryRowContext(ctx, query, userID).Scan(&reputation)
	if err != nil {
		if r.IsNotFound(err) {
			return models.MinReputation, nil
		}
		return 0, fmt.Errorf("failed to get latest reputation: %w", err)
	}
	return reputation, nil
}

// SumUpvoteDeltaForDay sums positive and negative deltas over the
// upvote-capped entry types within one calendar day. With no matching
// rows both aggregates are NULL and count as zero.
func (r *reputeRepository) SumUpvoteDeltaForDay(ctx context.Context, userID int64, day time.Time) (int, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT COALESCE(SUM(positive), 0), COALESCE(SUM(negative), 0)
		FROM reputes
		WHERE user_id = $1
			AND reputation_type IN ($2, $3)
			AND reputed_at >= $4 AND reputed_at < $5`

	var positive, negative int
	err := r.QueryRowContext(ctx, query,
		userID,
		models.ReputeGainByUpvoted, models.ReputeLostByUpvoteCanceled,
		dayStart, dayEnd,
	).Scan(&positive, &negative)
	if err != nil {
		return 0, fmt.Errorf("failed to sum daily upvote delta: %w", err)
	}
	return positive + negative, nil
}
