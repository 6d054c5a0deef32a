package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LifecycleType names a committed session transition
type LifecycleType string

const (
	LifecycleSessionOpened  LifecycleType = "SESSION_OPENED"
	LifecycleVehicleParked  LifecycleType = "VEHICLE_PARKED"
	LifecycleSpotUnresolved LifecycleType = "SPOT_UNRESOLVED"
	LifecycleSessionClosed  LifecycleType = "SESSION_CLOSED"
)

// LifecycleMessage is published to the lifecycle topic after a transition
// commits.
type LifecycleMessage struct {
	ID         uuid.UUID     `json:"id"`
	Type       LifecycleType `json:"type"`
	SessionID  uuid.UUID     `json:"session_id"`
	GarageID   uuid.UUID     `json:"garage_id"`
	Plate      string        `json:"license_plate"`
	Sector     string        `json:"sector,omitempty"`
	SpotID     *uuid.UUID    `json:"spot_id,omitempty"`
	Price      string        `json:"price,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewLifecycleMessage stamps a message with an id and the current time
func NewLifecycleMessage(t LifecycleType, sessionID, garageID uuid.UUID, plate string) *LifecycleMessage {
	return &LifecycleMessage{
		ID:         uuid.New(),
		Type:       t,
		SessionID:  sessionID,
		GarageID:   garageID,
		Plate:      plate,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *LifecycleMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PartitionKey keeps every message of one vehicle in order
func (m *LifecycleMessage) PartitionKey() string {
	return m.GarageID.String() + ":" + m.Plate
}
