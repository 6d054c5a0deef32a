package webhook

import (
	"time"

	"garagehub/internal/sessions"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventRequest is the garage event payload, shared by the webhook and the
// events topic
type EventRequest struct {
	EventType    string           `json:"event_type" validate:"required,oneof=ENTRY PARKED EXIT"`
	LicensePlate string           `json:"license_plate" validate:"required,plate"`
	GarageID     *uuid.UUID       `json:"garage_id,omitempty"`
	EntryTime    *time.Time       `json:"entry_time,omitempty"`
	ExitTime     *time.Time       `json:"exit_time,omitempty"`
	Sector       string           `json:"sector,omitempty" validate:"omitempty,sector"`
	Lat          *decimal.Decimal `json:"lat,omitempty"`
	Lng          *decimal.Decimal `json:"lng,omitempty"`
}

// ToEvent converts a validated request into the session event
func (r *EventRequest) ToEvent() sessions.Event {
	switch sessions.EventType(r.EventType) {
	case sessions.EventEntry:
		return sessions.EntryEvent{
			GarageID:     r.GarageID,
			LicensePlate: r.LicensePlate,
			EntryTime:    derefTime(r.EntryTime),
			Sector:       r.Sector,
		}
	case sessions.EventParked:
		return sessions.ParkedEvent{
			GarageID:     r.GarageID,
			LicensePlate: r.LicensePlate,
			Lat:          derefDecimal(r.Lat),
			Lng:          derefDecimal(r.Lng),
		}
	case sessions.EventExit:
		return sessions.ExitEvent{
			GarageID:     r.GarageID,
			LicensePlate: r.LicensePlate,
			ExitTime:     derefTime(r.ExitTime),
		}
	default:
		return nil
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
