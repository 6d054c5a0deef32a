package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParkingSession is one stay of a vehicle in a garage. At most one session
// per (garage, plate) has a nil ExitTime; see the partial unique index in
// the schema package.
type ParkingSession struct {
	ID                  uuid.UUID           `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GarageID            uuid.UUID           `gorm:"type:uuid;not null;index" json:"garage_id"`
	SectorID            *uuid.UUID          `gorm:"type:uuid;index" json:"sector_id,omitempty"`
	SectorCode          string              `gorm:"type:varchar(1)" json:"sector,omitempty"`
	SpotID              *uuid.UUID          `gorm:"type:uuid" json:"spot_id,omitempty"`
	VehicleLicensePlate string              `gorm:"type:varchar(10);not null;index" json:"license_plate"`
	EntryTime           time.Time           `gorm:"not null" json:"entry_time"`
	ExitTime            *time.Time          `gorm:"index" json:"exit_time,omitempty"`
	BasePrice           decimal.Decimal     `gorm:"type:numeric(10,2);not null" json:"base_price"`
	FinalPrice          decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"final_price"`
	Version             int64               `gorm:"not null;default:0" json:"version"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

func (s *ParkingSession) IsActive() bool {
	return s.ExitTime == nil
}

func (s *ParkingSession) State() State {
	switch {
	case s == nil:
		return StateNone
	case !s.IsActive():
		return StateClosed
	case s.SpotID != nil:
		return StateActiveParked
	default:
		return StateActiveUnparked
	}
}
