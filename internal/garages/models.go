package garages

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Garage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"` // at most one, see schema constraints
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sector counters are owned by the capacity manager; Version is bumped on
// every conditional update.
type Sector struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	GarageID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sectors_garage_code"`
	Code          string          `gorm:"column:sector_code;type:varchar(1);not null;uniqueIndex:idx_sectors_garage_code"`
	BasePrice     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	MaxCapacity   int             `gorm:"not null"`
	OccupiedCount int             `gorm:"not null;default:0"`
	Version       int64           `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s *Sector) IsFull() bool {
	return s.OccupiedCount >= s.MaxCapacity
}

type ParkingSpot struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	SectorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Latitude   decimal.Decimal `gorm:"type:numeric(10,7);not null"`
	Longitude  decimal.Decimal `gorm:"type:numeric(10,7);not null"`
	IsOccupied bool            `gorm:"not null;default:false"`
	Version    int64           `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
