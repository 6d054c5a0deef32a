package revenue

import (
	"context"
	"strings"
	"time"

	"garagehub/internal/garages"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/constants"
	"garagehub/pkg/cache"

	"github.com/google/uuid"
)

// DateLayout is the accepted format of the date query parameter
const DateLayout = constants.REVENUE_DAY_LAYOUT

// Service aggregates the fees of sessions closed on one day
type Service interface {
	GetRevenue(ctx context.Context, garageID *uuid.UUID, date time.Time, sector string) (*RevenueResponse, error)
}

type service struct {
	repo     Repository
	garages  garages.Service
	cache    cache.Service
	currency string
}

// NewService creates a new revenue service. cacheSvc may be nil.
func NewService(repo Repository, garageSvc garages.Service, cacheSvc cache.Service, currency string) Service {
	return &service{
		repo:     repo,
		garages:  garageSvc,
		cache:    cacheSvc,
		currency: currency,
	}
}

// GetRevenue sums final prices of sessions that exited on date (UTC day)
func (s *service) GetRevenue(ctx context.Context, garageID *uuid.UUID, date time.Time, sector string) (*RevenueResponse, error) {
	if date.IsZero() {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "date is required")
	}

	garage, err := s.garages.ResolveGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}

	sector = strings.ToUpper(strings.TrimSpace(sector))
	if sector != "" {
		if _, err := s.garages.ResolveSector(ctx, garage.ID, sector); err != nil {
			return nil, err
		}
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	filter := Filter{
		GarageID: garage.ID,
		Sector:   sector,
		From:     day,
		To:       day.AddDate(0, 0, 1),
	}

	fetch := func() (interface{}, error) {
		total, err := s.repo.SumCompletedRevenue(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &RevenueResponse{
			Amount:    total.StringFixed(2),
			Currency:  s.currency,
			Timestamp: time.Now().UTC(),
		}, nil
	}

	if s.cache == nil {
		res, err := fetch()
		if err != nil {
			return nil, err
		}
		return res.(*RevenueResponse), nil
	}

	var res RevenueResponse
	key := constants.BuildRevenueKey(garage.ID.String(), day.Format(DateLayout), sector)
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_REVENUE_SHORT, fetch, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
