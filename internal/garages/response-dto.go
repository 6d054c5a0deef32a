package garages

import (
	"garagehub/internal/pricing"

	"github.com/google/uuid"
)

type SectorOccupancyResponse struct {
	ID                  uuid.UUID `json:"id"`
	Code                string    `json:"sector"`
	BasePrice           string    `json:"base_price"`
	MaxCapacity         int       `json:"max_capacity"`
	OccupiedCount       int       `json:"occupied_count"`
	AvailableCount      int       `json:"available_count"`
	OccupancyPercentage string    `json:"occupancy_percentage"`
}

type GarageOccupancyResponse struct {
	GarageID   uuid.UUID                 `json:"garage_id"`
	GarageName string                    `json:"garage_name"`
	IsDefault  bool                      `json:"is_default"`
	Sectors    []SectorOccupancyResponse `json:"sectors"`
}

func toGarageOccupancyResponse(garage *Garage, sectors []Sector) *GarageOccupancyResponse {
	out := &GarageOccupancyResponse{
		GarageID:   garage.ID,
		GarageName: garage.Name,
		IsDefault:  garage.IsDefault,
		Sectors:    make([]SectorOccupancyResponse, 0, len(sectors)),
	}

	for _, s := range sectors {
		available := s.MaxCapacity - s.OccupiedCount
		if available < 0 {
			available = 0
		}
		out.Sectors = append(out.Sectors, SectorOccupancyResponse{
			ID:                  s.ID,
			Code:                s.Code,
			BasePrice:           s.BasePrice.StringFixed(2),
			MaxCapacity:         s.MaxCapacity,
			OccupiedCount:       s.OccupiedCount,
			AvailableCount:      available,
			OccupancyPercentage: pricing.OccupancyPercentage(s.OccupiedCount, s.MaxCapacity).StringFixed(2),
		})
	}

	return out
}
