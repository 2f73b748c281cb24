package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// ===============================
// REPUTATION TYPE CODES
// ===============================

// ReputationType identifies why a reputation entry was written.
type ReputationType int16

const (
	ReputeGainByUpvoted          ReputationType = 1
	ReputeGainByAnswerAccepted   ReputationType = 2
	ReputeGainByAcceptingAnswer  ReputationType = 3
	ReputeGainByDownvoteCanceled ReputationType = 4
	ReputeGainByCancelingVote    ReputationType = 5

	ReputeLostByCancelingAcceptedAnswer ReputationType = -1
	ReputeLostByAcceptedAnswerCanceled  ReputationType = -2
	ReputeLostByDownvoted               ReputationType = -3
	ReputeLostByFlagged                 ReputationType = -4
	ReputeLostByDownvoting              ReputationType = -5
	ReputeLostByFlaggedThreeTimes       ReputationType = -6
	ReputeLostByFlaggedFiveTimes        ReputationType = -7
	ReputeLostByUpvoteCanceled          ReputationType = -8

	// ReputeAssignedByModerator entries carry a free-text comment
	// instead of a question reference.
	ReputeAssignedByModerator ReputationType = 10
)

// MinReputation is the floor for a user's running reputation.
const MinReputation = 1

// MaxDailyUpvoteReputation caps how many points a user can gain per
// calendar day from upvotes, counting canceled upvotes against the gain.
const MaxDailyUpvoteReputation = 200

// DailyCapReputationTypes are the entry types counted toward the daily
// upvote reputation cap.
var DailyCapReputationTypes = []ReputationType{
	ReputeGainByUpvoted,
	ReputeLostByUpvoteCanceled,
}

var reputationTypeNames = map[ReputationType]string{
	ReputeGainByUpvoted:                 "gain_by_upvoted",
	ReputeGainByAnswerAccepted:          "gain_by_answer_accepted",
	ReputeGainByAcceptingAnswer:         "gain_by_accepting_answer",
	ReputeGainByDownvoteCanceled:        "gain_by_downvote_canceled",
	ReputeGainByCancelingVote:           "gain_by_canceling_downvote",
	ReputeLostByCancelingAcceptedAnswer: "lost_by_canceling_accepted_answer",
	ReputeLostByAcceptedAnswerCanceled:  "lost_by_accepted_answer_canceled",
	ReputeLostByDownvoted:               "lost_by_downvoted",
	ReputeLostByFlagged:                 "lost_by_flagged",
	ReputeLostByDownvoting:              "lost_by_downvoting",
	ReputeLostByFlaggedThreeTimes:       "lost_by_flagged_three_times",
	ReputeLostByFlaggedFiveTimes:        "lost_by_flagged_five_times",
	ReputeAssignedByModerator:           "assigned_by_moderator",
}

// Valid reports whether the code is a known reputation type.
func (t ReputationType) Valid() bool {
	_, ok := reputationTypeNames[t]
	return ok
}

// String returns the symbolic name of the reputation type.
func (t ReputationType) String() string {
	if name, ok := reputationTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("reputation_type(%d)", int16(t))
}

// ===============================
// DOMAIN RECORDS
// ===============================

// BadgeData is the persisted portion of a badge: the slug and how many
// times it has been awarded. Display metadata (name, description, css
// class, level) lives in the static badge registry, keyed by slug.
type BadgeData struct {
	ID           int64  `json:"id" db:"id"`
	Slug         string `json:"slug" db:"slug"`
	AwardedCount int    `json:"awarded_count" db:"awarded_count"`
}

// Award links a user, a badge and the content object that triggered the
// award. Notified stays false until the user has seen the award.
type Award struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	BadgeID     int64     `json:"badge_id" db:"badge_id"`
	ContentType string    `json:"content_type" db:"content_type"`
	ObjectID    int64     `json:"object_id" db:"object_id"`
	AwardedAt   time.Time `json:"awarded_at" db:"awarded_at"`
	Notified    bool      `json:"notified" db:"notified"`

	// Joined fields, populated by digest queries
	BadgeSlug string `json:"badge_slug,omitempty" db:"badge_slug"`
	Username  string `json:"username,omitempty" db:"username"`
}

// Repute is one entry in a user's reputation history. Positive and
// negative are kept as separate columns; negative holds values <= 0.
type Repute struct {
	ID             int64          `json:"id" db:"id"`
	UserID         int64          `json:"user_id" db:"user_id"`
	Positive       int            `json:"positive" db:"positive"`
	Negative       int            `json:"negative" db:"negative"`
	QuestionID     *int64         `json:"question_id,omitempty" db:"question_id"`
	ReputedAt      time.Time      `json:"reputed_at" db:"reputed_at"`
	ReputationType ReputationType `json:"reputation_type" db:"reputation_type"`
	Reputation     int            `json:"reputation" db:"reputation"`

	// Comment is required when ReputationType is ReputeAssignedByModerator
	// and unused otherwise.
	Comment *string `json:"comment,omitempty" db:"comment"`

	// Joined fields, populated by history queries
	Username      string  `json:"username,omitempty" db:"username"`
	QuestionTitle *string `json:"question_title,omitempty" db:"question_title"`
}

// Delta returns the net point change of the entry. Negative holds
// values <= 0, so the sum is the signed change.
func (r *Repute) Delta() int {
	return r.Positive + r.Negative
}

// Validate checks the comment/question invariant for the entry's type.
func (r *Repute) Validate() error {
	if !r.ReputationType.Valid() {
		return fmt.Errorf("unknown reputation type %d", r.ReputationType)
	}

	if r.ReputationType == ReputeAssignedByModerator {
		if r.Comment == nil || *r.Comment == "" {
			return fmt.Errorf("moderator-assigned entries require a comment")
		}
		if utf8.RuneCountInString(*r.Comment) > 128 {
			return fmt.Errorf("comment exceeds 128 characters")
		}
		return nil
	}

	if r.QuestionID == nil {
		return fmt.Errorf("%s entries require a question", r.ReputationType)
	}
	return nil
}
