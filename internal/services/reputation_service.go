package services

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"meritboard/internal/cache"
	"meritboard/internal/events"
	"meritboard/internal/models"
	"meritboard/internal/repositories"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ReputationService maintains the reputation ledger.
type ReputationService interface {
	RecordChange(ctx context.Context, req *RecordReputationRequest) (*models.Repute, error)
	AssignByModerator(ctx context.Context, req *ModeratorAdjustmentRequest) (*models.Repute, error)
	GetHistory(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*ReputeView], error)
	GetReputation(ctx context.Context, userID int64) (int, error)
	GetDailyUpvoteReputation(ctx context.Context, userID int64, day time.Time) (int, error)
	ExplanationSnippet(repute *models.Repute) string
}

const dailyReputationCacheTTL = 30 * time.Second

type reputationService struct {
	reputeRepo repositories.ReputeRepository
	cache      cache.Cache
	bus        *events.Bus
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewReputationService creates a new reputation service
func NewReputationService(reputeRepo repositories.ReputeRepository, cacheInstance cache.Cache, bus *events.Bus, logger *zap.Logger) ReputationService {
	return &reputationService{
		reputeRepo: reputeRepo,
		cache:      cacheInstance,
		bus:        bus,
		validate:   validator.New(),
		logger:     logger,
	}
}

func dailyReputationCacheKey(userID int64, day time.Time) string {
	return fmt.Sprintf("reputation:daily:%d:%s", userID, day.Format("2006-01-02"))
}

// RecordChange appends a question-linked reputation entry. Gains from
// upvotes are refused once the user has reached the daily cap, which
// keeps upvote/cancel cycles from farming points.
func (s *reputationService) RecordChange(ctx context.Context, req *RecordReputationRequest) (*models.Repute, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid reputation change", err)
	}
	if !req.ReputationType.Valid() {
		return nil, NewValidationError(fmt.Sprintf("unknown reputation type %d", req.ReputationType), nil)
	}
	if req.ReputationType == models.ReputeAssignedByModerator {
		return nil, NewValidationError("moderator adjustments go through AssignByModerator", nil)
	}
	if req.Positive == 0 && req.Negative == 0 {
		return nil, NewValidationError("reputation change must not be zero", nil)
	}

	if req.ReputationType == models.ReputeGainByUpvoted {
		earnedToday, err := s.reputeRepo.SumUpvoteDeltaForDay(ctx, req.UserID, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to check daily reputation: %w", err)
		}
		if earnedToday >= models.MaxDailyUpvoteReputation {
			return nil, NewBusinessError(
				fmt.Sprintf("daily reputation cap of %d reached", models.MaxDailyUpvoteReputation),
				"DAILY_CAP_REACHED",
			)
		}
	}

	current, err := s.reputeRepo.GetLatestReputation(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current reputation: %w", err)
	}

	questionID := req.QuestionID
	repute := &models.Repute{
		UserID:         req.UserID,
		Positive:       req.Positive,
		Negative:       req.Negative,
		QuestionID:     &questionID,
		ReputationType: req.ReputationType,
		Reputation:     clampReputation(current + req.Positive + req.Negative),
	}

	if err := s.reputeRepo.Create(ctx, repute); err != nil {
		return nil, fmt.Errorf("failed to record reputation change: %w", err)
	}

	if req.ReputationType == models.ReputeGainByUpvoted || req.ReputationType == models.ReputeLostByUpvoteCanceled {
		key := dailyReputationCacheKey(req.UserID, time.Now())
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to invalidate daily reputation cache", zap.Error(err))
		}
	}

	s.publishChange(repute)
	return repute, nil
}

// AssignByModerator appends a moderator-assigned entry. These carry the
// reason as a comment and no question reference.
func (s *reputationService) AssignByModerator(ctx context.Context, req *ModeratorAdjustmentRequest) (*models.Repute, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid moderator adjustment", err)
	}

	current, err := s.reputeRepo.GetLatestReputation(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current reputation: %w", err)
	}

	comment := req.Comment
	repute := &models.Repute{
		UserID:         req.UserID,
		ReputationType: models.ReputeAssignedByModerator,
		Comment:        &comment,
		Reputation:     clampReputation(current + req.Delta),
	}
	if req.Delta > 0 {
		repute.Positive = req.Delta
	} else {
		repute.Negative = req.Delta
	}

	if err := s.reputeRepo.Create(ctx, repute); err != nil {
		return nil, fmt.Errorf("failed to record moderator adjustment: %w", err)
	}

	s.logger.Info("Moderator reputation adjustment",
		zap.Int64("user_id", req.UserID),
		zap.Int("delta", req.Delta),
	)
	s.publishChange(repute)
	return repute, nil
}

func (s *reputationService) publishChange(repute *models.Repute) {
	event := events.NewReputationChangedEvent(
		repute.ID,
		repute.UserID,
		repute.Delta(),
		repute.Reputation,
		int16(repute.ReputationType),
	)
	if err := s.bus.Publish(event); err != nil {
		s.logger.Warn("Failed to publish reputation changed event", zap.Error(err))
	}
}

// GetHistory returns the user's ledger entries, newest first, each with
// a rendered explanation snippet.
func (s *reputationService) GetHistory(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*ReputeView], error) {
	if userID <= 0 {
		return nil, NewValidationError("user id must be positive", nil)
	}

	page, err := s.reputeRepo.GetByUserID(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get reputation history: %w", err)
	}

	views := make([]*ReputeView, 0, len(page.Data))
	for _, repute := range page.Data {
		views = append(views, &ReputeView{
			Repute:      repute,
			Explanation: s.ExplanationSnippet(repute),
		})
	}

	return &models.PaginatedResponse[*ReputeView]{
		Data:       views,
		Pagination: page.Pagination,
	}, nil
}

// GetReputation returns the user's current running reputation.
func (s *reputationService) GetReputation(ctx context.Context, userID int64) (int, error) {
	if userID <= 0 {
		return 0, NewValidationError("user id must be positive", nil)
	}
	return s.reputeRepo.GetLatestReputation(ctx, userID)
}

// GetDailyUpvoteReputation returns the points the user has earned from
// upvotes (minus canceled upvotes) within the calendar day containing
// day. Sums are cached briefly; writes invalidate the current day.
func (s *reputationService) GetDailyUpvoteReputation(ctx context.Context, userID int64, day time.Time) (int, error) {
	if userID <= 0 {
		return 0, NewValidationError("user id must be positive", nil)
	}

	key := dailyReputationCacheKey(userID, day)
	var cached int
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Daily reputation cache read failed", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	earned, err := s.reputeRepo.SumUpvoteDeltaForDay(ctx, userID, day)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, key, earned, dailyReputationCacheTTL); err != nil {
		s.logger.Warn("Daily reputation cache write failed", zap.Error(err))
	}
	return earned, nil
}

// ExplanationSnippet renders an HTML snippet explaining the entry: the
// moderator's reason for type-10 entries, a link to the related
// question otherwise. Rendering here hides the type-10 idiosyncrasy
// from callers.
func (s *reputationService) ExplanationSnippet(repute *models.Repute) string {
	if repute.ReputationType == models.ReputeAssignedByModerator {
		reason := ""
		if repute.Comment != nil {
			reason = *repute.Comment
		}
		return fmt.Sprintf("<em>Changed by moderator. Reason:</em> %s",
			template.HTMLEscapeString(reason))
	}

	title := ""
	if repute.QuestionTitle != nil {
		title = *repute.QuestionTitle
	}
	delta := repute.Delta()

	var linkTitle string
	if delta > 0 {
		linkTitle = fmt.Sprintf("%d points were added for %s's contribution to question %s",
			delta, repute.Username, title)
	} else {
		linkTitle = fmt.Sprintf("%d points were subtracted for %s's contribution to question %s",
			-delta, repute.Username, title)
	}

	questionID := int64(0)
	if repute.QuestionID != nil {
		questionID = *repute.QuestionID
	}

	return fmt.Sprintf(`<a href="/questions/%d" title="%s">%s</a>`,
		questionID,
		template.HTMLEscapeString(linkTitle),
		template.HTMLEscapeString(title),
	)
}

// clampReputation keeps the running value at or above the floor.
func clampReputation(value int) int {
	if value < models.MinReputation {
		return models.MinReputation
	}
	return value
}
