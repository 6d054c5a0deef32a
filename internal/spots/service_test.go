package spots

import (
	"context"
	"testing"
	"time"

	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spotStore struct {
	spots     map[uuid.UUID]garages.ParkingSpot
	conflicts int
}

func (s *spotStore) ListSpotsBySector(_ context.Context, sectorID uuid.UUID) ([]garages.ParkingSpot, error) {
	var out []garages.ParkingSpot
	for _, sp := range s.spots {
		if sp.SectorID == sectorID {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *spotStore) FindSpotByID(_ context.Context, id uuid.UUID) (*garages.ParkingSpot, error) {
	sp, ok := s.spots[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &sp, nil
}

func (s *spotStore) UpdateSpotOccupancy(_ context.Context, id uuid.UUID, expectedVersion int64, occupied bool) error {
	sp := s.spots[id]
	if s.conflicts > 0 {
		s.conflicts--
		sp.Version++
		s.spots[id] = sp
		return database.ErrVersionConflict
	}
	if sp.Version != expectedVersion {
		return database.ErrVersionConflict
	}
	sp.IsOccupied = occupied
	sp.Version++
	s.spots[id] = sp
	return nil
}

func newSpotService(spots ...garages.ParkingSpot) (*Service, *spotStore) {
	store := &spotStore{spots: map[uuid.UUID]garages.ParkingSpot{}}
	for _, sp := range spots {
		store.spots[sp.ID] = sp
	}
	policy := retry.Policy{MaxTries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	return NewService(store, tolerance, policy), store
}

func TestMatchWithinSector(t *testing.T) {
	sectorA, sectorB := uuid.New(), uuid.New()
	a := spotAt("-23.561684", "-46.655981")
	a.SectorID = sectorA
	b := spotAt("-23.561684", "-46.655981")
	b.SectorID = sectorB

	svc, _ := newSpotService(a, b)
	lat, lng := coords("-23.561684", "-46.655981")

	got, err := svc.Match(context.Background(), sectorA, lat, lng)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestOccupyAndFree(t *testing.T) {
	sp := spotAt("1", "1")
	svc, store := newSpotService(sp)
	ctx := context.Background()

	_, err := svc.Occupy(ctx, sp.ID)
	require.NoError(t, err)
	assert.True(t, store.spots[sp.ID].IsOccupied)

	_, err = svc.Occupy(ctx, sp.ID)
	assert.ErrorIs(t, err, apperror.ErrSpotAlreadyOccupied)

	_, err = svc.Free(ctx, sp.ID)
	require.NoError(t, err)
	assert.False(t, store.spots[sp.ID].IsOccupied)

	version := store.spots[sp.ID].Version
	_, err = svc.Free(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, version, store.spots[sp.ID].Version)
}

func TestOccupyRetriesConflict(t *testing.T) {
	sp := spotAt("1", "1")
	svc, store := newSpotService(sp)
	store.conflicts = 2

	got, err := svc.Occupy(context.Background(), sp.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOccupied)
}

func TestOccupyUnknownSpot(t *testing.T) {
	svc, _ := newSpotService()

	_, err := svc.Occupy(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrSpotNotFound)
}
