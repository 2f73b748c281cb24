package events

import "time"

// Event types published by the award and reputation services.
const (
	EventTypeBadgeAwarded     = "badge.awarded"
	EventTypeReputationChange = "reputation.changed"
)

// BadgeAwardedEvent is emitted after a badge award is persisted
type BadgeAwardedEvent struct {
	BaseEvent
	AwardID     int64  `json:"award_id"`
	UserID      int64  `json:"user_id"`
	BadgeSlug   string `json:"badge_slug"`
	ContentType string `json:"content_type"`
	ObjectID    int64  `json:"object_id"`
}

// NewBadgeAwardedEvent creates a new badge awarded event
func NewBadgeAwardedEvent(awardID, userID int64, badgeSlug, contentType string, objectID int64) *BadgeAwardedEvent {
	return &BadgeAwardedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeBadgeAwarded,
			Timestamp: time.Now(),
		},
		AwardID:     awardID,
		UserID:      userID,
		BadgeSlug:   badgeSlug,
		ContentType: contentType,
		ObjectID:    objectID,
	}
}

// ReputationChangedEvent is emitted after a reputation ledger entry is
// persisted
type ReputationChangedEvent struct {
	BaseEvent
	ReputeID       int64 `json:"repute_id"`
	UserID         int64 `json:"user_id"`
	Delta          int   `json:"delta"`
	Reputation     int   `json:"reputation"`
	ReputationType int16 `json:"reputation_type"`
}

// NewReputationChangedEvent creates a new reputation changed event
func NewReputationChangedEvent(reputeID, userID int64, delta, reputation int, reputationType int16) *ReputationChangedEvent {
	return &ReputationChangedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeReputationChange,
			Timestamp: time.Now(),
		},
		ReputeID:       reputeID,
		UserID:         userID,
		Delta:          delta,
		Reputation:     reputation,
		ReputationType: reputationType,
	}
}
