package services

import (
	"meritboard/internal/cache"
	"meritboard/internal/events"
	"meritboard/internal/repositories"

	"go.uber.org/zap"
)

// ServiceCollection holds all service instances
type ServiceCollection struct {
	Badge      BadgeService
	Award      AwardService
	Reputation ReputationService
}

// NewServiceCollection creates all services wired to the given
// repositories, cache, and event bus.
func NewServiceCollection(repos *repositories.Collection, cacheInstance cache.Cache, bus *events.Bus, logger *zap.Logger) *ServiceCollection {
	return &ServiceCollection{
		Badge:      NewBadgeService(repos.Badge, logger),
		Award:      NewAwardService(repos.Award, repos.Badge, cacheInstance, bus, logger),
		Reputation: NewReputationService(repos.Repute, cacheInstance, bus, logger),
	}
}
