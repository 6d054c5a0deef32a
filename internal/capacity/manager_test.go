package capacity

import (
	"context"
	"sync"
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

// sectorStore keeps one sector and can fail the next N writes with a
// version conflict, as if a sibling request had committed first.
type sectorStore struct {
	mu        sync.Mutex
	sector    garages.Sector
	conflicts int
	writes    int
	lost      int
}

func (s *sectorStore) FindSectorByID(_ context.Context, id uuid.UUID) (*garages.Sector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.sector.ID {
		return nil, database.ErrNotFound
	}
	cp := s.sector
	return &cp, nil
}

func (s *sectorStore) UpdateSectorOccupancy(_ context.Context, id uuid.UUID, expectedVersion int64, occupied int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		s.sector.Version++
		return database.ErrVersionConflict
	}
	if s.sector.Version != expectedVersion {
		s.lost++
		return database.ErrVersionConflict
	}
	s.writes++
	s.sector.OccupiedCount = occupied
	s.sector.Version++
	return nil
}

var testPolicy = retry.Policy{MaxTries: 4, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func newStore(max, occupied int) *sectorStore {
	return &sectorStore{sector: garages.Sector{ID: uuid.New(), Code: "A", MaxCapacity: max, OccupiedCount: occupied}}
}

func TestReserveIncrements(t *testing.T) {
	store := newStore(2, 0)
	m := NewManager(store, testPolicy)

	sector, err := m.Reserve(context.Background(), store.sector.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sector.OccupiedCount)
	assert.Equal(t, 1, store.sector.OccupiedCount)
}

func TestReserveFullSector(t *testing.T) {
	store := newStore(1, 1)
	m := NewManager(store, testPolicy)

	_, err := m.Reserve(context.Background(), store.sector.ID)
	assert.ErrorIs(t, err, apperror.ErrSectorFull)
	assert.Equal(t, 0, store.writes)
}

func TestReserveRetriesOnConflict(t *testing.T) {
	store := newStore(5, 0)
	store.conflicts = 2
	m := NewManager(store, testPolicy)

	sector, err := m.Reserve(context.Background(), store.sector.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sector.OccupiedCount)
	assert.Equal(t, 1, store.writes)
}

func TestReserveExhaustsRetries(t *testing.T) {
	store := newStore(5, 0)
	store.conflicts = 10
	m := NewManager(store, testPolicy)

	_, err := m.Reserve(context.Background(), store.sector.ID)
	assert.ErrorIs(t, err, apperror.ErrTransientConflict)
	assert.Equal(t, 0, store.sector.OccupiedCount)
}

func TestReleaseClampsAtZero(t *testing.T) {
	store := newStore(3, 0)
	m := NewManager(store, testPolicy)

	sector, err := m.Release(context.Background(), store.sector.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sector.OccupiedCount)
	assert.Equal(t, 0, store.writes)
}

func TestReleaseDecrements(t *testing.T) {
	store := newStore(3, 2)
	m := NewManager(store, testPolicy)

	sector, err := m.Release(context.Background(), store.sector.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sector.OccupiedCount)
}

func TestUnknownSector(t *testing.T) {
	m := NewManager(newStore(1, 0), testPolicy)

	_, err := m.Reserve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrSectorNotFound)
}

func TestConcurrentReservationsNeverExceedCapacity(t *testing.T) {
	store := newStore(3, 0)
	m := NewManager(store, retry.Policy{MaxTries: 50, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond})

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Reserve(context.Background(), store.sector.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	admitted, rejected := 0, 0
	for err := range results {
		switch {
		case err == nil:
			admitted++
		case apperror.IsRetryable(err):
			rejected++
		default:
			require.ErrorIs(t, err, apperror.ErrSectorFull)
			rejected++
		}
	}

	assert.Equal(t, 3, admitted)
	assert.Equal(t, 7, rejected)
	assert.Equal(t, 3, store.sector.OccupiedCount)
	assert.LessOrEqual(t, store.sector.OccupiedCount, store.sector.MaxCapacity)
}

// lockstepStore holds the first read of each of n callers until all of them
// have read, so they all write against the same version.
type lockstepStore struct {
	*sectorStore
	n       int
	mu      sync.Mutex
	reads   int
	arrived sync.WaitGroup
}

func newLockstepStore(inner *sectorStore, n int) *lockstepStore {
	s := &lockstepStore{sectorStore: inner, n: n}
	s.arrived.Add(n)
	return s
}

func (s *lockstepStore) FindSectorByID(ctx context.Context, id uuid.UUID) (*garages.Sector, error) {
	sector, err := s.sectorStore.FindSectorByID(ctx, id)

	s.mu.Lock()
	first := s.reads < s.n
	s.reads++
	s.mu.Unlock()

	if first {
		s.arrived.Done()
		s.arrived.Wait()
	}
	return sector, err
}

func TestRacingReservationsRetryLostWrites(t *testing.T) {
	const callers = 6
	inner := newStore(3, 0)
	store := newLockstepStore(inner, callers)
	m := NewManager(store, retry.Policy{MaxTries: 20, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond})

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Reserve(context.Background(), inner.sector.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	admitted := 0
	for err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.ErrorIs(t, err, apperror.ErrSectorFull)
	}

	// every caller read version 0; only one of those writes could land
	assert.GreaterOrEqual(t, inner.lost, callers-1)
	assert.Equal(t, 3, admitted)
	assert.Equal(t, 3, inner.writes)
	assert.Equal(t, 3, inner.sector.OccupiedCount)
}
