package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType is the discriminator of an inbound garage event
type EventType string

const (
	EventEntry  EventType = "ENTRY"
	EventParked EventType = "PARKED"
	EventExit   EventType = "EXIT"
)

// Event is one of EntryEvent, ParkedEvent or ExitEvent
type Event interface {
	Type() EventType
	Plate() string
}

// EntryEvent opens a session. Sector defaults to the configured sector when
// empty; GarageID defaults to the default garage when nil.
type EntryEvent struct {
	GarageID     *uuid.UUID
	LicensePlate string
	EntryTime    time.Time
	Sector       string
}

type ParkedEvent struct {
	GarageID     *uuid.UUID
	LicensePlate string
	Lat          decimal.Decimal
	Lng          decimal.Decimal
}

type ExitEvent struct {
	GarageID     *uuid.UUID
	LicensePlate string
	ExitTime     time.Time
}

func (EntryEvent) Type() EventType { return EventEntry }
func (e EntryEvent) Plate() string { return e.LicensePlate }
func (ParkedEvent) Type() EventType { return EventParked }
func (e ParkedEvent) Plate() string { return e.LicensePlate }
func (ExitEvent) Type() EventType { return EventExit }
func (e ExitEvent) Plate() string { return e.LicensePlate }

// Result describes the session after an event was applied
type Result struct {
	SessionID uuid.UUID
	GarageID  uuid.UUID
	Plate     string
	State     State
	Sector    string
	SpotID    *uuid.UUID
	// Price is the locked hourly price after ENTRY and the final charge
	// after EXIT.
	Price decimal.Decimal
	// Unresolved is set when a PARKED event matched no single spot; the
	// session stays unparked and the event is still acknowledged.
	Unresolved error
	// Replayed marks a PARKED event for an already parked session.
	Replayed bool
}

func resultOf(s *ParkingSession, price decimal.Decimal) *Result {
	return &Result{
		SessionID: s.ID,
		GarageID:  s.GarageID,
		Plate:     s.VehicleLicensePlate,
		State:     s.State(),
		Sector:    s.SectorCode,
		SpotID:    s.SpotID,
		Price:     price,
	}
}
