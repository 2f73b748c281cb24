package router

import (
	"encoding/json"
	"net/http"

	"meritboard/internal/database"
	"meritboard/internal/handlers/api/v1/awards"
	"meritboard/internal/handlers/api/v1/badges"
	"meritboard/internal/handlers/api/v1/reputation"
	"meritboard/internal/middleware"
	"meritboard/internal/response"
	"meritboard/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SetupRouter configures all HTTP routes and returns the main handler
func SetupRouter(
	serviceCollection *services.ServiceCollection,
	db *database.Manager,
	authMiddleware *middleware.AuthMiddleware,
	responseBuilder *response.Builder,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.StructuredLogging())

	badgeController := badges.NewBadgeController(serviceCollection, logger, responseBuilder)
	awardController := awards.NewAwardController(serviceCollection, logger, responseBuilder)
	reputationController := reputation.NewReputationController(serviceCollection, logger, responseBuilder)

	r.Get("/health", healthHandler(db))

	r.Route("/api/v1", func(r chi.Router) {
		// Read endpoints are public.
		r.Get("/badges", badgeController.ListBadges)
		r.Get("/badges/{slug}", badgeController.GetBadge)
		r.Get("/badges/{slug}/recipients", badgeController.GetBadgeRecipients)

		r.Get("/awards/recent", awardController.GetRecentAwards)
		r.Get("/users/{userID}/awards", awardController.GetUserAwards)

		r.Get("/users/{userID}/reputation", reputationController.GetReputation)
		r.Get("/users/{userID}/reputation/history", reputationController.GetHistory)
		r.Get("/users/{userID}/reputation/today", reputationController.GetDailyUpvoteReputation)

		// Write endpoints need a token.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth())

			r.Get("/awards/pending", awardController.GetPendingNotifications)
			r.Post("/awards/acknowledge", awardController.AcknowledgeAwards)

			// Awarding badges and recording reputation are system actions
			// driven by the application, not by end users.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireModerator())

				r.Post("/awards", awardController.AwardBadge)
				r.Post("/reputation", reputationController.RecordChange)
				r.Post("/reputation/moderator", reputationController.AssignByModerator)
			})
		})
	})

	return r
}

// healthHandler reports database health for load balancers and probes.
func healthHandler(db *database.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())

		status := http.StatusOK
		if health.Status == database.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(health)
	}
}
