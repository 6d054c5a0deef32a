// Package memstore is an in-memory implementation of the garage, pricing,
// session and revenue repositories. Transactions are serialized and roll
// back by restoring a snapshot, so the store suits single-process runs
// (DB_DRIVER=memory) and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"garagehub/internal/garages"
	"garagehub/internal/pricing"
	"garagehub/internal/revenue"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	_ garages.Repository  = (*Store)(nil)
	_ pricing.Repository  = (*Store)(nil)
	_ sessions.Repository = (*Store)(nil)
	_ revenue.Repository  = (*Store)(nil)
	_ database.Transactor = (*Store)(nil)
)

type txKey struct{}

type tables struct {
	garages    map[uuid.UUID]garages.Garage
	sectors    map[uuid.UUID]garages.Sector
	spots      map[uuid.UUID]garages.ParkingSpot
	strategies map[uuid.UUID]pricing.PricingStrategy
	sessions   map[uuid.UUID]sessions.ParkingSession
}

func newTables() tables {
	return tables{
		garages:    make(map[uuid.UUID]garages.Garage),
		sectors:    make(map[uuid.UUID]garages.Sector),
		spots:      make(map[uuid.UUID]garages.ParkingSpot),
		strategies: make(map[uuid.UUID]pricing.PricingStrategy),
		sessions:   make(map[uuid.UUID]sessions.ParkingSession),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.garages {
		c.garages[k] = v
	}
	for k, v := range t.sectors {
		c.sectors[k] = v
	}
	for k, v := range t.spots {
		c.spots[k] = v
	}
	for k, v := range t.strategies {
		c.strategies[k] = v
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex

	mu        sync.RWMutex
	data      tables
	conflicts map[uuid.UUID]int
}

func New() *Store {
	return &Store{
		data:      newTables(),
		conflicts: make(map[uuid.UUID]int),
	}
}

// InjectConflicts makes the next n conditional updates of row id fail with
// database.ErrVersionConflict.
func (s *Store) InjectConflicts(id uuid.UUID, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts[id] = n
}

// takeConflict must be called with mu held
func (s *Store) takeConflict(id uuid.UUID) bool {
	if s.conflicts[id] > 0 {
		s.conflicts[id]--
		return true
	}
	return false
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func stamp(id *uuid.UUID, createdAt, updatedAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

// Garages

func (s *Store) CreateGarage(_ context.Context, garage *garages.Garage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if garage.IsDefault {
		for _, g := range s.data.garages {
			if g.IsDefault {
				return database.ErrDuplicateKey
			}
		}
	}
	if _, exists := s.data.garages[garage.ID]; exists && garage.ID != uuid.Nil {
		return database.ErrDuplicateKey
	}

	stamp(&garage.ID, &garage.CreatedAt, &garage.UpdatedAt)
	s.data.garages[garage.ID] = *garage
	return nil
}

func (s *Store) FindGarageByID(_ context.Context, id uuid.UUID) (*garages.Garage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.data.garages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &g, nil
}

func (s *Store) FindDefaultGarage(_ context.Context) (*garages.Garage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.data.garages {
		if g.IsDefault {
			return &g, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) ListGarages(_ context.Context) ([]garages.Garage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]garages.Garage, 0, len(s.data.garages))
	for _, g := range s.data.garages {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Sectors

func (s *Store) CreateSector(_ context.Context, sector *garages.Sector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.sectors {
		if existing.GarageID == sector.GarageID && existing.Code == sector.Code {
			return database.ErrDuplicateKey
		}
	}

	stamp(&sector.ID, &sector.CreatedAt, &sector.UpdatedAt)
	s.data.sectors[sector.ID] = *sector
	return nil
}

func (s *Store) FindSectorByID(_ context.Context, id uuid.UUID) (*garages.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sector, ok := s.data.sectors[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &sector, nil
}

func (s *Store) FindSectorByCode(_ context.Context, garageID uuid.UUID, code string) (*garages.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sector := range s.data.sectors {
		if sector.GarageID == garageID && sector.Code == code {
			return &sector, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) ListSectors(_ context.Context, garageID uuid.UUID) ([]garages.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []garages.Sector
	for _, sector := range s.data.sectors {
		if sector.GarageID == garageID {
			out = append(out, sector)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *Store) UpdateSectorOccupancy(_ context.Context, id uuid.UUID, expectedVersion int64, occupied int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sector, ok := s.data.sectors[id]
	if !ok || sector.Version != expectedVersion || s.takeConflict(id) {
		return database.ErrVersionConflict
	}
	if occupied < 0 || occupied > sector.MaxCapacity {
		return database.ErrCheckViolation
	}

	sector.OccupiedCount = occupied
	sector.Version++
	sector.UpdatedAt = time.Now().UTC()
	s.data.sectors[id] = sector
	return nil
}

// Spots

func (s *Store) CreateSpot(_ context.Context, spot *garages.ParkingSpot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&spot.ID, &spot.CreatedAt, &spot.UpdatedAt)
	s.data.spots[spot.ID] = *spot
	return nil
}

func (s *Store) FindSpotByID(_ context.Context, id uuid.UUID) (*garages.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spot, ok := s.data.spots[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &spot, nil
}

func (s *Store) ListSpotsBySector(_ context.Context, sectorID uuid.UUID) ([]garages.ParkingSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []garages.ParkingSpot
	for _, spot := range s.data.spots {
		if spot.SectorID == sectorID {
			out = append(out, spot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *Store) UpdateSpotOccupancy(_ context.Context, id uuid.UUID, expectedVersion int64, occupied bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spot, ok := s.data.spots[id]
	if !ok || spot.Version != expectedVersion || s.takeConflict(id) {
		return database.ErrVersionConflict
	}

	spot.IsOccupied = occupied
	spot.Version++
	spot.UpdatedAt = time.Now().UTC()
	s.data.spots[id] = spot
	return nil
}

// Pricing

func (s *Store) CreateStrategy(_ context.Context, strategy *pricing.PricingStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&strategy.ID, &strategy.CreatedAt, &strategy.UpdatedAt)
	s.data.strategies[strategy.ID] = *strategy
	return nil
}

func (s *Store) ListActiveStrategies(_ context.Context, garageID *uuid.UUID) ([]pricing.PricingStrategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []pricing.PricingStrategy
	for _, st := range s.data.strategies {
		if !st.IsActive {
			continue
		}
		if garageID != nil && st.GarageID != nil && *st.GarageID != *garageID {
			continue
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinOccupancy.LessThan(out[j].MinOccupancy) })
	return out, nil
}

// Sessions

func (s *Store) CreateSession(_ context.Context, session *sessions.ParkingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.IsActive() {
		for _, existing := range s.data.sessions {
			if existing.IsActive() && existing.GarageID == session.GarageID &&
				existing.VehicleLicensePlate == session.VehicleLicensePlate {
				return database.ErrDuplicateKey
			}
		}
	}

	stamp(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	s.data.sessions[session.ID] = *session
	return nil
}

func (s *Store) FindSessionByID(_ context.Context, id uuid.UUID) (*sessions.ParkingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.data.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &session, nil
}

func (s *Store) FindActiveSession(_ context.Context, garageID uuid.UUID, plate string) (*sessions.ParkingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.data.sessions {
		if session.IsActive() && session.GarageID == garageID && session.VehicleLicensePlate == plate {
			return &session, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *Store) UpdateSession(_ context.Context, session *sessions.ParkingSession, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.data.sessions[session.ID]
	if !ok || stored.Version != expectedVersion || s.takeConflict(session.ID) {
		return database.ErrVersionConflict
	}

	now := time.Now().UTC()
	stored.SpotID = session.SpotID
	stored.ExitTime = session.ExitTime
	stored.FinalPrice = session.FinalPrice
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = now
	s.data.sessions[session.ID] = stored

	session.Version = stored.Version
	session.UpdatedAt = now
	return nil
}

// Revenue

func (s *Store) SumCompletedRevenue(_ context.Context, filter revenue.Filter) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, session := range s.data.sessions {
		if session.ExitTime == nil || !session.FinalPrice.Valid || session.GarageID != filter.GarageID {
			continue
		}
		if session.ExitTime.Before(filter.From) || !session.ExitTime.Before(filter.To) {
			continue
		}
		if filter.Sector != "" && !strings.EqualFold(session.SectorCode, filter.Sector) {
			continue
		}
		total = total.Add(session.FinalPrice.Decimal)
	}
	return total, nil
}
