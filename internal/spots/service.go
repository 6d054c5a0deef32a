package spots

import (
	"context"
	"errors"
	"fmt"

	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the slice of garages.Repository the spot service needs
type Store interface {
	ListSpotsBySector(ctx context.Context, sectorID uuid.UUID) ([]garages.ParkingSpot, error)
	FindSpotByID(ctx context.Context, id uuid.UUID) (*garages.ParkingSpot, error)
	UpdateSpotOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied bool) error
}

type Service struct {
	store     Store
	tolerance decimal.Decimal
	policy    retry.Policy
}

func NewService(store Store, tolerance decimal.Decimal, policy retry.Policy) *Service {
	return &Service{store: store, tolerance: tolerance, policy: policy}
}

// Match finds the spot of sectorID at (lat, lng)
func (s *Service) Match(ctx context.Context, sectorID uuid.UUID, lat, lng decimal.Decimal) (*garages.ParkingSpot, error) {
	candidates, err := s.store.ListSpotsBySector(ctx, sectorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list spots of sector %s: %w", sectorID, err)
	}
	return FindSpot(candidates, lat, lng, s.tolerance)
}

// Occupy marks a free spot as taken. An occupied spot fails with
// SpotAlreadyOccupied.
func (s *Service) Occupy(ctx context.Context, spotID uuid.UUID) (*garages.ParkingSpot, error) {
	return retry.OnConflict(ctx, s.policy, "spot", spotID.String(), func() (*garages.ParkingSpot, error) {
		spot, err := s.load(ctx, spotID)
		if err != nil {
			return nil, err
		}
		if spot.IsOccupied {
			return nil, apperror.Wrap(apperror.ErrSpotAlreadyOccupied, "spot %s", spotID)
		}
		return s.write(ctx, spot, true)
	})
}

// Free clears the occupied flag; freeing a free spot is a no-op
func (s *Service) Free(ctx context.Context, spotID uuid.UUID) (*garages.ParkingSpot, error) {
	return retry.OnConflict(ctx, s.policy, "spot", spotID.String(), func() (*garages.ParkingSpot, error) {
		spot, err := s.load(ctx, spotID)
		if err != nil {
			return nil, err
		}
		if !spot.IsOccupied {
			return spot, nil
		}
		return s.write(ctx, spot, false)
	})
}

func (s *Service) load(ctx context.Context, spotID uuid.UUID) (*garages.ParkingSpot, error) {
	spot, err := s.store.FindSpotByID(ctx, spotID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Wrap(apperror.ErrSpotNotFound, "spot %s", spotID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load spot %s: %w", spotID, err)
	}
	return spot, nil
}

func (s *Service) write(ctx context.Context, spot *garages.ParkingSpot, occupied bool) (*garages.ParkingSpot, error) {
	if err := s.store.UpdateSpotOccupancy(ctx, spot.ID, spot.Version, occupied); err != nil {
		return nil, err
	}
	spot.IsOccupied = occupied
	spot.Version++
	return spot, nil
}
