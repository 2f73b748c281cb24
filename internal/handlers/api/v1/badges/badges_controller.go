// ===============================
// FILE: internal/handlers/api/v1/badges/badges_controller.go
// ===============================

package badges

import (
	"net/http"

	"meritboard/internal/response"
	"meritboard/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BadgeController handles badge API endpoints
type BadgeController struct {
	services        *services.ServiceCollection
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewBadgeController creates a new badge controller
func NewBadgeController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *BadgeController {
	return &BadgeController{
		services:        serviceCollection,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// ListBadges handles GET /api/v1/badges
func (c *BadgeController) ListBadges(w http.ResponseWriter, r *http.Request) {
	views, err := c.services.Badge.ListBadges(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, views)
}

// GetBadge handles GET /api/v1/badges/{slug}
func (c *BadgeController) GetBadge(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		c.responseBuilder.WriteValidationError(w, r, "badge slug is required")
		return
	}

	view, err := c.services.Badge.GetBadge(r.Context(), slug)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, view)
}

// GetBadgeRecipients handles GET /api/v1/badges/{slug}/recipients
func (c *BadgeController) GetBadgeRecipients(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		c.responseBuilder.WriteValidationError(w, r, "badge slug is required")
		return
	}

	userIDs, err := c.services.Badge.GetBadgeRecipients(r.Context(), slug)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteJSON(w, r, http.StatusOK, map[string]interface{}{
		"slug":     slug,
		"user_ids": userIDs,
	})
}
