package services

import (
	"time"

	"meritboard/internal/models"
)

// ===============================
// REQUEST TYPES
// ===============================

// AwardBadgeRequest asks for a badge to be awarded to a user for a
// specific content object.
type AwardBadgeRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	BadgeSlug   string `json:"badge_slug" validate:"required,max=50"`
	ContentType string `json:"content_type" validate:"required,max=50"`
	ObjectID    int64  `json:"object_id" validate:"required,gt=0"`
}

// RecordReputationRequest appends a reputation change tied to a
// question.
type RecordReputationRequest struct {
	UserID         int64                 `json:"user_id" validate:"required,gt=0"`
	QuestionID     int64                 `json:"question_id" validate:"required,gt=0"`
	Positive       int                   `json:"positive" validate:"min=0"`
	Negative       int                   `json:"negative" validate:"max=0"`
	ReputationType models.ReputationType `json:"reputation_type" validate:"required"`
}

// ModeratorAdjustmentRequest appends a moderator-assigned reputation
// change with a mandatory reason.
type ModeratorAdjustmentRequest struct {
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
	Delta   int    `json:"delta" validate:"required"`
	Comment string `json:"comment" validate:"required,max=128"`
}

// ===============================
// VIEW TYPES
// ===============================

// BadgeView merges a badge row with its registry metadata.
type BadgeView struct {
	ID           int64  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	CSSClass     string `json:"css_class"`
	Level        string `json:"level"`
	AwardedCount int    `json:"awarded_count"`
	// Real is false when the database row's slug has no registry entry
	// and the metadata above is the placeholder.
	Real bool `json:"real"`
}

// AwardDigestEntry is one row of the recent-awards digest.
type AwardDigestEntry struct {
	AwardID     int64     `json:"award_id"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	BadgeID     int64     `json:"badge_id"`
	BadgeSlug   string    `json:"badge_slug"`
	BadgeName   string    `json:"badge_name"`
	BadgeLevel  string    `json:"badge_level"`
	ContentType string    `json:"content_type"`
	ObjectID    int64     `json:"object_id"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// ReputeView is a ledger entry together with its rendered explanation.
type ReputeView struct {
	*models.Repute
	Explanation string `json:"explanation"`
}
