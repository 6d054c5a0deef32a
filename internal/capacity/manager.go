// Package capacity reserves and releases sector capacity under optimistic
// versioning.
package capacity

import (
	"context"
	"errors"
	"fmt"

	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"
	"garagehub/pkg/logger"

	"github.com/google/uuid"
)

// SectorStore is the slice of garages.Repository the manager needs
type SectorStore interface {
	FindSectorByID(ctx context.Context, id uuid.UUID) (*garages.Sector, error)
	UpdateSectorOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied int) error
}

type Manager struct {
	store  SectorStore
	policy retry.Policy
}

func NewManager(store SectorStore, policy retry.Policy) *Manager {
	return &Manager{store: store, policy: policy}
}

// Reserve takes one unit of capacity and returns the sector as committed.
// A full sector fails with SectorFull without retrying.
func (m *Manager) Reserve(ctx context.Context, sectorID uuid.UUID) (*garages.Sector, error) {
	return retry.OnConflict(ctx, m.policy, "sector", sectorID.String(), func() (*garages.Sector, error) {
		sector, err := m.load(ctx, sectorID)
		if err != nil {
			return nil, err
		}

		if sector.IsFull() {
			return nil, apperror.Wrap(apperror.ErrSectorFull, "sector %s at %d/%d",
				sector.Code, sector.OccupiedCount, sector.MaxCapacity)
		}

		return m.write(ctx, sector, sector.OccupiedCount+1)
	})
}

// Release gives one unit back. The counter never goes below zero.
func (m *Manager) Release(ctx context.Context, sectorID uuid.UUID) (*garages.Sector, error) {
	return retry.OnConflict(ctx, m.policy, "sector", sectorID.String(), func() (*garages.Sector, error) {
		sector, err := m.load(ctx, sectorID)
		if err != nil {
			return nil, err
		}

		if sector.OccupiedCount <= 0 {
			logger.FromContext(ctx).Warn("release on empty sector", "sector", sector.Code, "sector_id", sector.ID)
			return sector, nil
		}

		return m.write(ctx, sector, sector.OccupiedCount-1)
	})
}

func (m *Manager) load(ctx context.Context, sectorID uuid.UUID) (*garages.Sector, error) {
	sector, err := m.store.FindSectorByID(ctx, sectorID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Wrap(apperror.ErrSectorNotFound, "sector %s", sectorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sector %s: %w", sectorID, err)
	}
	return sector, nil
}

func (m *Manager) write(ctx context.Context, sector *garages.Sector, occupied int) (*garages.Sector, error) {
	if err := m.store.UpdateSectorOccupancy(ctx, sector.ID, sector.Version, occupied); err != nil {
		return nil, err
	}
	sector.OccupiedCount = occupied
	sector.Version++
	return sector, nil
}
