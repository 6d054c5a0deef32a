package pricing

import "github.com/google/uuid"

type StrategyResponse struct {
	ID           uuid.UUID  `json:"id"`
	GarageID     *uuid.UUID `json:"garage_id,omitempty"`
	Name         string     `json:"name"`
	MinOccupancy string     `json:"min_occupancy"`
	MaxOccupancy string     `json:"max_occupancy"`
	Multiplier   string     `json:"multiplier"`
	Global       bool       `json:"global"`
}

func toStrategyResponse(s PricingStrategy) StrategyResponse {
	return StrategyResponse{
		ID:           s.ID,
		GarageID:     s.GarageID,
		Name:         s.Name,
		MinOccupancy: s.MinOccupancy.StringFixed(2),
		MaxOccupancy: s.MaxOccupancy.StringFixed(2),
		Multiplier:   s.Multiplier.StringFixed(2),
		Global:       s.IsGlobal(),
	}
}
