package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PricingStrategy applies Multiplier to a sector's base price while the
// occupancy percentage lies in [MinOccupancy, MaxOccupancy). A nil GarageID
// makes the strategy global.
type PricingStrategy struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GarageID     *uuid.UUID      `gorm:"type:uuid;index" json:"garage_id,omitempty"`
	Name         string          `gorm:"not null" json:"name"`
	MinOccupancy decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"min_occupancy"`
	MaxOccupancy decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"max_occupancy"`
	Multiplier   decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"multiplier"`
	IsActive     bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Contains reports whether pct falls in the half-open band
func (p *PricingStrategy) Contains(pct decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(p.MinOccupancy) && pct.LessThan(p.MaxOccupancy)
}

// IsGlobal reports whether the strategy applies to every garage
func (p *PricingStrategy) IsGlobal() bool {
	return p.GarageID == nil
}
