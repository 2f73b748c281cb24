// ===============================
// FILE: internal/handlers/api/v1/reputation/reputation_controller.go
// ===============================

package reputation

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"meritboard/internal/response"
	"meritboard/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReputationController handles reputation API endpoints
type ReputationController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewReputationController creates a new reputation controller
func NewReputationController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ReputationController {
	return &ReputationController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// GetReputation handles GET /api/v1/users/{userID}/reputation
func (c *ReputationController) GetReputation(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteValidationError(w, r, "invalid user id")
		return
	}

	reputation, err := c.services.Reputation.GetReputation(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id":    userID,
		"reputation": reputation,
	})
}

// GetHistory handles GET /api/v1/users/{userID}/reputation/history
func (c *ReputationController) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteValidationError(w, r, "invalid user id")
		return
	}

	page, err := c.services.Reputation.GetHistory(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, page)
}

// GetDailyUpvoteReputation handles GET /api/v1/users/{userID}/reputation/today
func (c *ReputationController) GetDailyUpvoteReputation(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteValidationError(w, r, "invalid user id")
		return
	}

	day := time.Now()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.responseBuilder.WriteValidationError(w, r, "day must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	earned, err := c.services.Reputation.GetDailyUpvoteReputation(r.Context(), userID, day)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"day":     day.Format("2006-01-02"),
		"earned":  earned,
	})
}

// RecordChange handles POST /api/v1/reputation
func (c *ReputationController) RecordChange(w http.ResponseWriter, r *http.Request) {
	var req services.RecordReputationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode reputation change request", zap.Error(err))
		c.responseBuilder.WriteValidationError(w, r, "invalid request body")
		return
	}

	repute, err := c.services.Reputation.RecordChange(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, repute)
}

// AssignByModerator handles POST /api/v1/reputation/moderator
func (c *ReputationController) AssignByModerator(w http.ResponseWriter, r *http.Request) {
	var req services.ModeratorAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode moderator adjustment request", zap.Error(err))
		c.responseBuilder.WriteValidationError(w, r, "invalid request body")
		return
	}

	repute, err := c.services.Reputation.AssignByModerator(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, repute)
}
