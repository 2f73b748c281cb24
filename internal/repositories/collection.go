// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"meritboard/internal/database"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	Badge  BadgeRepository
	Award  AwardRepository
	Repute ReputeRepository
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Collection{
		Badge:  NewBadgeRepository(db, logger),
		Award:  NewAwardRepository(db, logger),
		Repute: NewReputeRepository(db, logger),
	}, nil
}
