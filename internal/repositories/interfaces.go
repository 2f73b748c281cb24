package repositories

import (
	"context"
	"time"

	"meritboard/internal/models"
)

// BadgeRepository defines the contract for badge data operations
type BadgeRepository interface {
	Create(ctx context.Context, badge *models.BadgeData) error
	GetByID(ctx context.Context, id int64) (*models.BadgeData, error)
	GetBySlug(ctx context.Context, slug string) (*models.BadgeData, error)
	// GetOrCreateBySlug returns the existing row for slug or inserts a
	// fresh one with a zero counter.
	GetOrCreateBySlug(ctx context.Context, slug string) (*models.BadgeData, error)
	// List returns all badge rows ordered by slug.
	List(ctx context.Context) ([]*models.BadgeData, error)
	// GetAwardedUserIDs returns the distinct users holding the badge.
	GetAwardedUserIDs(ctx context.Context, badgeID int64) ([]int64, error)
}

// AwardRepository defines the contract for award data operations
type AwardRepository interface {
	// Create inserts the award and increments the badge's awarded_count
	// in one transaction.
	Create(ctx context.Context, award *models.Award) error
	GetByID(ctx context.Context, id int64) (*models.Award, error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Award], error)
	// GetRecent returns the newest awards joined with badge slug and
	// username, newest first.
	GetRecent(ctx context.Context, limit int) ([]*models.Award, error)
	// HasAward reports whether the user already holds the badge for the
	// given content object.
	HasAward(ctx context.Context, userID, badgeID int64, contentType string, objectID int64) (bool, error)
	GetUnnotified(ctx context.Context, userID int64) ([]*models.Award, error)
	MarkNotified(ctx context.Context, userID int64) (int64, error)
}

// ReputeRepository defines the contract for reputation ledger operations
type ReputeRepository interface {
	Create(ctx context.Context, repute *models.Repute) error
	GetByID(ctx context.Context, id int64) (*models.Repute, error)
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Repute], error)
	// GetLatestReputation returns the running reputation value of the
	// user's newest entry, or models.MinReputation when the ledger is
	// empty.
	GetLatestReputation(ctx context.Context, userID int64) (int, error)
	// SumUpvoteDeltaForDay sums positive and negative deltas over the
	// upvote-capped entry types within the calendar day containing day.
	// Missing aggregates count as zero.
	SumUpvoteDeltaForDay(ctx context.Context, userID int64, day time.Time) (int, error)
}
