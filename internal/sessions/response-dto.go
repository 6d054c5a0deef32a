package sessions

import (
	"time"

	"garagehub/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlateStatusResponse struct {
	SessionID     uuid.UUID  `json:"session_id"`
	GarageID      uuid.UUID  `json:"garage_id"`
	LicensePlate  string     `json:"license_plate"`
	State         State      `json:"state"`
	Sector        string     `json:"sector"`
	SpotID        *uuid.UUID `json:"spot_id,omitempty"`
	EntryTime     time.Time  `json:"entry_time"`
	BasePrice     string     `json:"base_price"`
	PriceUntilNow string     `json:"price_until_now"`
	TimeParked    string     `json:"time_parked"`
	AsOf          time.Time  `json:"as_of"`
}

// EventResponse is the acknowledgement returned for an applied event
type EventResponse struct {
	SessionID    uuid.UUID  `json:"session_id"`
	LicensePlate string     `json:"license_plate"`
	State        State      `json:"state"`
	Sector       string     `json:"sector,omitempty"`
	SpotID       *uuid.UUID `json:"spot_id,omitempty"`
	Price        string     `json:"price"`
	Unresolved   string     `json:"unresolved,omitempty"`
	Replayed     bool       `json:"replayed,omitempty"`
}

func toPlateStatusResponse(s *ParkingSession, accrued decimal.Decimal, at time.Time) *PlateStatusResponse {
	return &PlateStatusResponse{
		SessionID:     s.ID,
		GarageID:      s.GarageID,
		LicensePlate:  s.VehicleLicensePlate,
		State:         s.State(),
		Sector:        s.SectorCode,
		SpotID:        s.SpotID,
		EntryTime:     s.EntryTime,
		BasePrice:     s.BasePrice.StringFixed(2),
		PriceUntilNow: accrued.StringFixed(2),
		TimeParked:    at.Sub(s.EntryTime).Truncate(time.Minute).String(),
		AsOf:          at,
	}
}

// ToEventResponse renders a Result for transports
func ToEventResponse(r *Result) *EventResponse {
	out := &EventResponse{
		SessionID:    r.SessionID,
		LicensePlate: r.Plate,
		State:        r.State,
		Sector:       r.Sector,
		SpotID:       r.SpotID,
		Price:        r.Price.StringFixed(2),
		Replayed:     r.Replayed,
	}
	if code, ok := apperror.CodeOf(r.Unresolved); ok {
		out.Unresolved = string(code)
	}
	return out
}
