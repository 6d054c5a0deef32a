package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"garagehub/internal/capacity"
	"garagehub/internal/garages"
	"garagehub/internal/revenue"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSector(t *testing.T, s *Store, capacity int) *garages.Sector {
	t.Helper()
	ctx := context.Background()

	garage := &garages.Garage{Name: "test", IsDefault: true}
	require.NoError(t, s.CreateGarage(ctx, garage))

	sector := &garages.Sector{GarageID: garage.ID, Code: "A", BasePrice: decimal.NewFromInt(10), MaxCapacity: capacity}
	require.NoError(t, s.CreateSector(ctx, sector))
	return sector
}

func TestTransactionRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	sector := newSector(t, s, 5)

	boom := errors.New("boom")
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.UpdateSectorOccupancy(ctx, sector.ID, 0, 3))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := s.FindSectorByID(ctx, sector.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.OccupiedCount)
	assert.Equal(t, int64(0), stored.Version)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	s := New()
	ctx := context.Background()
	sector := newSector(t, s, 5)

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.WithinTransaction(ctx, func(ctx context.Context) error {
			return s.UpdateSectorOccupancy(ctx, sector.ID, 0, 1)
		})
	})
	require.NoError(t, err)

	stored, _ := s.FindSectorByID(ctx, sector.ID)
	assert.Equal(t, 1, stored.OccupiedCount)
}

func TestConditionalUpdateChecksVersion(t *testing.T) {
	s := New()
	ctx := context.Background()
	sector := newSector(t, s, 5)

	require.NoError(t, s.UpdateSectorOccupancy(ctx, sector.ID, 0, 1))
	assert.ErrorIs(t, s.UpdateSectorOccupancy(ctx, sector.ID, 0, 2), database.ErrVersionConflict)
	assert.ErrorIs(t, s.UpdateSectorOccupancy(ctx, sector.ID, 1, 6), database.ErrCheckViolation)

	s.InjectConflicts(sector.ID, 1)
	assert.ErrorIs(t, s.UpdateSectorOccupancy(ctx, sector.ID, 1, 2), database.ErrVersionConflict)
	assert.NoError(t, s.UpdateSectorOccupancy(ctx, sector.ID, 1, 2))
}

func TestSingleActiveSessionPerPlate(t *testing.T) {
	s := New()
	ctx := context.Background()
	garageID := uuid.New()

	first := &sessions.ParkingSession{GarageID: garageID, VehicleLicensePlate: "ABC1234", EntryTime: time.Now()}
	require.NoError(t, s.CreateSession(ctx, first))

	dup := &sessions.ParkingSession{GarageID: garageID, VehicleLicensePlate: "ABC1234", EntryTime: time.Now()}
	assert.ErrorIs(t, s.CreateSession(ctx, dup), database.ErrDuplicateKey)

	exit := time.Now()
	first.ExitTime = &exit
	first.FinalPrice = decimal.NewNullDecimal(decimal.NewFromInt(10))
	require.NoError(t, s.UpdateSession(ctx, first, 0))
	assert.Equal(t, int64(1), first.Version)

	again := &sessions.ParkingSession{GarageID: garageID, VehicleLicensePlate: "ABC1234", EntryTime: time.Now()}
	assert.NoError(t, s.CreateSession(ctx, again))
}

func TestSumCompletedRevenue(t *testing.T) {
	s := New()
	ctx := context.Background()
	garageID := uuid.New()
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	closed := func(sector string, exit time.Time, price string) {
		session := &sessions.ParkingSession{
			GarageID:            garageID,
			SectorCode:          sector,
			VehicleLicensePlate: uuid.NewString()[:7],
			EntryTime:           exit.Add(-time.Hour),
			ExitTime:            &exit,
			FinalPrice:          decimal.NewNullDecimal(decimal.RequireFromString(price)),
		}
		require.NoError(t, s.CreateSession(ctx, session))
	}

	closed("A", day.Add(2*time.Hour), "10.00")
	closed("A", day.Add(23*time.Hour), "20.50")
	closed("B", day.Add(3*time.Hour), "4.10")
	closed("A", day.Add(24*time.Hour), "99.00")
	require.NoError(t, s.CreateSession(ctx, &sessions.ParkingSession{GarageID: garageID, SectorCode: "A", VehicleLicensePlate: "OPEN123", EntryTime: day}))

	total, err := s.SumCompletedRevenue(ctx, revenue.Filter{GarageID: garageID, From: day, To: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, "34.60", total.StringFixed(2))

	total, err = s.SumCompletedRevenue(ctx, revenue.Filter{GarageID: garageID, Sector: "A", From: day, To: day.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, "30.50", total.StringFixed(2))
}

// lockstepSectors releases the first read of each caller only once all of
// them have read, and counts the writes that lost the version race.
type lockstepSectors struct {
	*Store
	callers int

	mu      sync.Mutex
	reads   int
	lost    int
	arrived sync.WaitGroup
}

func (l *lockstepSectors) FindSectorByID(ctx context.Context, id uuid.UUID) (*garages.Sector, error) {
	sector, err := l.Store.FindSectorByID(ctx, id)

	l.mu.Lock()
	first := l.reads < l.callers
	l.reads++
	l.mu.Unlock()

	if first {
		l.arrived.Done()
		l.arrived.Wait()
	}
	return sector, err
}

func (l *lockstepSectors) UpdateSectorOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied int) error {
	err := l.Store.UpdateSectorOccupancy(ctx, id, expectedVersion, occupied)
	if errors.Is(err, database.ErrVersionConflict) {
		l.mu.Lock()
		l.lost++
		l.mu.Unlock()
	}
	return err
}

func TestConcurrentReserveOutsideTransaction(t *testing.T) {
	const callers = 8
	s := New()
	sector := newSector(t, s, 5)

	sectors := &lockstepSectors{Store: s, callers: callers}
	sectors.arrived.Add(callers)
	m := capacity.NewManager(sectors, retry.Policy{MaxTries: 30, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, full := 0, 0
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Reserve(context.Background(), sector.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, apperror.ErrSectorFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := s.FindSectorByID(context.Background(), sector.ID)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, sectors.lost, callers-1, "all callers read version 0")
	assert.Equal(t, 5, admitted)
	assert.Equal(t, 3, full)
	assert.Equal(t, 5, stored.OccupiedCount)
	assert.Equal(t, int64(5), stored.Version)
}
