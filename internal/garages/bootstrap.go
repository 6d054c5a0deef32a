package garages

import (
	"context"
	"fmt"

	"garagehub/internal/pricing"
	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Layout describes a garage to create
type Layout struct {
	Name      string
	IsDefault bool
	Sectors   []SectorLayout
	Bands     []BandLayout
}

type SectorLayout struct {
	Code        string
	BasePrice   decimal.Decimal
	MaxCapacity int
	Spots       []SpotLayout
}

type SpotLayout struct {
	Lat decimal.Decimal
	Lng decimal.Decimal
}

// BandLayout becomes a pricing strategy bound to the new garage
type BandLayout struct {
	Name       string
	Min        decimal.Decimal
	Max        decimal.Decimal
	Multiplier decimal.Decimal
}

// DefaultLayout is the demo garage: two sectors of ten spots each and the
// four standard occupancy bands.
func DefaultLayout() Layout {
	return Layout{
		Name:      "Main Garage",
		IsDefault: true,
		Sectors: []SectorLayout{
			gridSector("A", "10.00", 10, "-23.561684", "-46.655981"),
			gridSector("B", "4.10", 10, "-23.561784", "-46.655981"),
		},
		Bands: []BandLayout{
			{Name: "low", Min: decimal.RequireFromString("0"), Max: decimal.RequireFromString("25"), Multiplier: decimal.RequireFromString("0.90")},
			{Name: "normal", Min: decimal.RequireFromString("25"), Max: decimal.RequireFromString("50"), Multiplier: decimal.RequireFromString("1.00")},
			{Name: "busy", Min: decimal.RequireFromString("50"), Max: decimal.RequireFromString("75"), Multiplier: decimal.RequireFromString("1.10")},
			{Name: "peak", Min: decimal.RequireFromString("75"), Max: decimal.RequireFromString("100.01"), Multiplier: decimal.RequireFromString("1.25")},
		},
	}
}

// gridSector lays spots in a row, 0.00001 degrees of longitude apart
func gridSector(code, basePrice string, capacity int, lat, lng string) SectorLayout {
	origin := decimal.RequireFromString(lng)
	step := decimal.RequireFromString("0.00001")

	spots := make([]SpotLayout, 0, capacity)
	for i := 0; i < capacity; i++ {
		spots = append(spots, SpotLayout{
			Lat: decimal.RequireFromString(lat),
			Lng: origin.Add(step.Mul(decimal.NewFromInt(int64(i)))),
		})
	}

	return SectorLayout{
		Code:        code,
		BasePrice:   decimal.RequireFromString(basePrice),
		MaxCapacity: capacity,
		Spots:       spots,
	}
}

// Bootstrap creates the garage described by layout in one transaction
func Bootstrap(ctx context.Context, tx database.Transactor, repo Repository, strategies pricing.Repository, layout Layout) (*Garage, error) {
	garage := &Garage{
		ID:        uuid.New(),
		Name:      layout.Name,
		IsDefault: layout.IsDefault,
	}

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.CreateGarage(ctx, garage); err != nil {
			return fmt.Errorf("failed to create garage %q: %w", layout.Name, err)
		}

		for _, sl := range layout.Sectors {
			sector := &Sector{
				ID:          uuid.New(),
				GarageID:    garage.ID,
				Code:        sl.Code,
				BasePrice:   sl.BasePrice,
				MaxCapacity: sl.MaxCapacity,
			}
			if err := repo.CreateSector(ctx, sector); err != nil {
				return fmt.Errorf("failed to create sector %s: %w", sl.Code, err)
			}

			for _, sp := range sl.Spots {
				spot := &ParkingSpot{
					ID:        uuid.New(),
					SectorID:  sector.ID,
					Latitude:  sp.Lat,
					Longitude: sp.Lng,
				}
				if err := repo.CreateSpot(ctx, spot); err != nil {
					return fmt.Errorf("failed to create spot in sector %s: %w", sl.Code, err)
				}
			}
		}

		for _, band := range layout.Bands {
			strategy := &pricing.PricingStrategy{
				ID:           uuid.New(),
				GarageID:     &garage.ID,
				Name:         band.Name,
				MinOccupancy: band.Min,
				MaxOccupancy: band.Max,
				Multiplier:   band.Multiplier,
				IsActive:     true,
			}
			if err := strategies.CreateStrategy(ctx, strategy); err != nil {
				return fmt.Errorf("failed to create pricing band %s: %w", band.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return garage, nil
}
