package revenue

import (
	"context"
	"fmt"
	"time"

	"garagehub/internal/sessions"
	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Filter selects completed sessions by garage, exit window [From, To) and
// optionally sector.
type Filter struct {
	GarageID uuid.UUID
	Sector   string
	From     time.Time
	To       time.Time
}

// Repository interface for revenue queries
type Repository interface {
	SumCompletedRevenue(ctx context.Context, filter Filter) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new revenue repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SumCompletedRevenue(ctx context.Context, filter Filter) (decimal.Decimal, error) {
	query := database.Conn(ctx, r.db).
		Model(&sessions.ParkingSession{}).
		Select("COALESCE(SUM(final_price), 0)").
		Where("garage_id = ?", filter.GarageID).
		Where("exit_time >= ? AND exit_time < ?", filter.From, filter.To).
		Where("final_price IS NOT NULL")

	if filter.Sector != "" {
		query = query.Where("sector_code = ?", filter.Sector)
	}

	var total decimal.Decimal
	if err := query.Row().Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", database.Translate(err))
	}
	return total, nil
}
