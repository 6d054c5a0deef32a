package garages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/constants"
	"garagehub/internal/shared/database"
	"garagehub/pkg/cache"
	"garagehub/pkg/logger"

	"github.com/google/uuid"
)

// Service resolves the garage and sector an event targets
type Service interface {
	ResolveGarage(ctx context.Context, id *uuid.UUID) (*Garage, error)
	ResolveSector(ctx context.Context, garageID uuid.UUID, code string) (*Sector, error)
	ListGarages(ctx context.Context) ([]Garage, error)
	GetOccupancy(ctx context.Context, garageID *uuid.UUID) (*GarageOccupancyResponse, error)
}

type service struct {
	repo     Repository
	cache    cache.Service
	cacheTTL time.Duration
}

// NewService creates the resolver. cacheSvc may be nil, in which case every
// lookup goes to the repository.
func NewService(repo Repository, cacheSvc cache.Service, cacheTTL time.Duration) Service {
	if cacheTTL <= 0 {
		cacheTTL = constants.TTL_STATIC_LONG
	}
	return &service{
		repo:     repo,
		cache:    cacheSvc,
		cacheTTL: cacheTTL,
	}
}

// ResolveGarage looks up id, or the default garage when id is nil. Garages
// never change after bootstrap so they may be served from cache.
func (s *service) ResolveGarage(ctx context.Context, id *uuid.UUID) (*Garage, error) {
	key := constants.CACHE_KEY_GARAGE_DEFAULT
	if id != nil {
		key = constants.BuildGarageDetailKey(id.String())
	}

	var garage Garage
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &garage); err == nil {
			return &garage, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn("garage cache read failed", "key", key, "error", err)
		}
	}

	found, err := s.loadGarage(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, found, s.cacheTTL); err != nil {
			logger.FromContext(ctx).Warn("garage cache write failed", "key", key, "error", err)
		}
	}
	return found, nil
}

func (s *service) loadGarage(ctx context.Context, id *uuid.UUID) (*Garage, error) {
	if id == nil {
		garage, err := s.repo.FindDefaultGarage(ctx)
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.ErrNoDefaultGarage
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load default garage: %w", err)
		}
		return garage, nil
	}

	garage, err := s.repo.FindGarageByID(ctx, *id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Wrap(apperror.ErrGarageNotFound, "garage %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load garage %s: %w", id, err)
	}
	return garage, nil
}

// ResolveSector always reads through to the repository; sectors carry live
// counters.
func (s *service) ResolveSector(ctx context.Context, garageID uuid.UUID, code string) (*Sector, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperror.Wrap(apperror.ErrSectorNotFound, "empty sector code")
	}

	sector, err := s.repo.FindSectorByCode(ctx, garageID, code)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.Wrap(apperror.ErrSectorNotFound, "sector %s in garage %s", code, garageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sector %s: %w", code, err)
	}
	return sector, nil
}

func (s *service) ListGarages(ctx context.Context) ([]Garage, error) {
	garages, err := s.repo.ListGarages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list garages: %w", err)
	}
	return garages, nil
}

// GetOccupancy reports the live counters of every sector of a garage
func (s *service) GetOccupancy(ctx context.Context, garageID *uuid.UUID) (*GarageOccupancyResponse, error) {
	garage, err := s.ResolveGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}

	sectors, err := s.repo.ListSectors(ctx, garage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sectors: %w", err)
	}

	return toGarageOccupancyResponse(garage, sectors), nil
}
