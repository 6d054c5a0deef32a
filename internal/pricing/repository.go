package pricing

import (
	"context"

	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for pricing strategy operations
type Repository interface {
	CreateStrategy(ctx context.Context, strategy *PricingStrategy) error
	// ListActiveStrategies returns the active strategies of garageID plus the
	// global ones, ordered by MinOccupancy. A nil garageID lists every
	// active strategy.
	ListActiveStrategies(ctx context.Context, garageID *uuid.UUID) ([]PricingStrategy, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new pricing repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateStrategy(ctx context.Context, strategy *PricingStrategy) error {
	return database.Translate(database.Conn(ctx, r.db).Create(strategy).Error)
}

func (r *repository) ListActiveStrategies(ctx context.Context, garageID *uuid.UUID) ([]PricingStrategy, error) {
	var strategies []PricingStrategy

	query := database.Conn(ctx, r.db).Where("is_active = ?", true)
	if garageID != nil {
		query = query.Where("garage_id = ? OR garage_id IS NULL", *garageID)
	}

	err := query.Order("min_occupancy ASC").Find(&strategies).Error
	return strategies, database.Translate(err)
}
