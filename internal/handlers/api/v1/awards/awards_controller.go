// ===============================
// FILE: internal/handlers/api/v1/awards/awards_controller.go
// ===============================

package awards

import (
	"encoding/json"
	"net/http"
	"strconv"

	"meritboard/internal/middleware"
	"meritboard/internal/response"
	"meritboard/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AwardController handles award API endpoints
type AwardController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewAwardController creates a new award controller
func NewAwardController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *AwardController {
	return &AwardController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// GetRecentAwards handles GET /api/v1/awards/recent
func (c *AwardController) GetRecentAwards(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	digest, err := c.services.Award.GetRecentAwards(r.Context(), limit)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, digest)
}

// GetUserAwards handles GET /api/v1/users/{userID}/awards
func (c *AwardController) GetUserAwards(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		c.responseBuilder.WriteValidationError(w, r, "invalid user id")
		return
	}

	page, err := c.services.Award.GetUserAwards(r.Context(), userID, response.ParsePagination(r))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, page)
}

// AwardBadge handles POST /api/v1/awards
func (c *AwardController) AwardBadge(w http.ResponseWriter, r *http.Request) {
	var req services.AwardBadgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.logger.Warn("Failed to decode award request", zap.Error(err))
		c.responseBuilder.WriteValidationError(w, r, "invalid request body")
		return
	}

	award, err := c.services.Award.AwardBadge(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, award)
}

// GetPendingNotifications handles GET /api/v1/awards/pending
func (c *AwardController) GetPendingNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	pending, err := c.services.Award.GetPendingNotifications(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, pending)
}

// AcknowledgeAwards handles POST /api/v1/awards/acknowledge
func (c *AwardController) AcknowledgeAwards(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := c.services.Award.AcknowledgeAwards(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, map[string]int64{"acknowledged": count})
}
