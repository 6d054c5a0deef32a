package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garagehub/internal/capacity"
	"garagehub/internal/garages"
	"garagehub/internal/notifications"
	"garagehub/internal/pricing"
	"garagehub/internal/shared/apperror"
	"garagehub/internal/shared/constants"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"
	"garagehub/internal/spots"
	"garagehub/pkg/cache"
	"garagehub/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service applies garage events to parking sessions
type Service interface {
	Entry(ctx context.Context, ev EntryEvent) (*Result, error)
	Parked(ctx context.Context, ev ParkedEvent) (*Result, error)
	Exit(ctx context.Context, ev ExitEvent) (*Result, error)
	// Dispatch routes an event to its handler
	Dispatch(ctx context.Context, ev Event) (*Result, error)
	PlateStatus(ctx context.Context, garageID *uuid.UUID, plate string, at time.Time) (*PlateStatusResponse, error)
}

// Dependencies wires the service
type Dependencies struct {
	Repo          Repository
	Tx            database.Transactor
	Garages       garages.Service
	Capacity      *capacity.Manager
	Spots         *spots.Service
	Pricing       *pricing.Engine
	Locker        PlateLocker
	Publisher     notifications.Publisher
	Policy        retry.Policy
	DefaultSector string
	// Cache holds revenue aggregates that EXIT invalidates. May be nil.
	Cache         cache.Service
}

type handler func(ctx context.Context, ev Event) (*Result, error)

type service struct {
	Dependencies
	handlers map[EventType]handler
}

// NewService creates a new session service
func NewService(deps Dependencies) Service {
	if deps.Locker == nil {
		deps.Locker = NewLocalPlateLocker()
	}
	if deps.Publisher == nil {
		deps.Publisher = notifications.LogPublisher{}
	}
	if deps.DefaultSector == "" {
		deps.DefaultSector = "A"
	}

	s := &service{Dependencies: deps}
	s.handlers = map[EventType]handler{
		EventEntry: func(ctx context.Context, ev Event) (*Result, error) {
			e, ok := ev.(EntryEvent)
			if !ok {
				return nil, apperror.Wrap(apperror.ErrInvalidEvent, "unexpected payload %T for %s", ev, EventEntry)
			}
			return s.Entry(ctx, e)
		},
		EventParked: func(ctx context.Context, ev Event) (*Result, error) {
			e, ok := ev.(ParkedEvent)
			if !ok {
				return nil, apperror.Wrap(apperror.ErrInvalidEvent, "unexpected payload %T for %s", ev, EventParked)
			}
			return s.Parked(ctx, e)
		},
		EventExit: func(ctx context.Context, ev Event) (*Result, error) {
			e, ok := ev.(ExitEvent)
			if !ok {
				return nil, apperror.Wrap(apperror.ErrInvalidEvent, "unexpected payload %T for %s", ev, EventExit)
			}
			return s.Exit(ctx, e)
		},
	}
	return s
}

func (s *service) Dispatch(ctx context.Context, ev Event) (*Result, error) {
	if ev == nil {
		return nil, apperror.Wrap(apperror.ErrInvalidEvent, "empty event")
	}
	h, ok := s.handlers[ev.Type()]
	if !ok {
		return nil, apperror.Wrap(apperror.ErrInvalidEvent, "unknown event type %q", ev.Type())
	}

	res, err := h(ctx, ev)
	if err != nil {
		if code, ok := apperror.CodeOf(err); ok {
			logger.FromContext(ctx).LogEventRejected(ctx, string(ev.Type()), NormalizePlate(ev.Plate()), string(code))
		}
		return nil, err
	}
	return res, nil
}

// Entry opens a session, reserving one unit of sector capacity and locking
// the hourly price for the stay.
func (s *service) Entry(ctx context.Context, ev EntryEvent) (*Result, error) {
	plate := NormalizePlate(ev.LicensePlate)
	if plate == "" {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "license_plate is required")
	}
	if ev.EntryTime.IsZero() {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "entry_time is required")
	}

	garage, err := s.Garages.ResolveGarage(ctx, ev.GarageID)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(ev.Sector))
	if code == "" {
		code = s.DefaultSector
	}

	unlock, err := s.lockPlate(ctx, garage.ID, plate)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var session *ParkingSession
	err = s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.Repo.FindActiveSession(ctx, garage.ID, plate); err == nil {
			return apperror.Wrap(apperror.ErrVehicleAlreadyActive, "plate %s in garage %s", plate, garage.ID)
		} else if !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to look up active session: %w", err)
		}

		target, err := s.Garages.ResolveSector(ctx, garage.ID, code)
		if err != nil {
			return err
		}

		sector, err := s.Capacity.Reserve(ctx, target.ID)
		if err != nil {
			return err
		}

		pct := pricing.OccupancyPercentage(sector.OccupiedCount, sector.MaxCapacity)
		price, err := s.Pricing.ApplyDynamicMultiplier(ctx, garage.ID, sector.BasePrice, pct)
		if err != nil {
			return err
		}

		session = &ParkingSession{
			ID:                  uuid.New(),
			GarageID:            garage.ID,
			SectorID:            &sector.ID,
			SectorCode:          sector.Code,
			VehicleLicensePlate: plate,
			EntryTime:           ev.EntryTime.UTC(),
			BasePrice:           price,
		}
		if err := s.Repo.CreateSession(ctx, session); err != nil {
			if errors.Is(err, database.ErrDuplicateKey) {
				return apperror.Wrap(apperror.ErrVehicleAlreadyActive, "plate %s in garage %s", plate, garage.ID)
			}
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).LogSessionOpened(ctx, session.ID.String(), plate, session.SectorCode, session.BasePrice.StringFixed(2))

	msg := notifications.NewLifecycleMessage(notifications.LifecycleSessionOpened, session.ID, garage.ID, plate)
	msg.Sector = session.SectorCode
	msg.Price = session.BasePrice.StringFixed(2)
	s.publish(ctx, msg)

	return resultOf(session, session.BasePrice), nil
}

// Parked assigns the spot matching the reported coordinates. A replay for a
// parked session is acknowledged without changes; coordinates that match
// no single spot leave the session unparked.
func (s *service) Parked(ctx context.Context, ev ParkedEvent) (*Result, error) {
	plate := NormalizePlate(ev.LicensePlate)
	if plate == "" {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "license_plate is required")
	}

	garage, err := s.Garages.ResolveGarage(ctx, ev.GarageID)
	if err != nil {
		return nil, err
	}

	res, err := retry.OnConflict(ctx, s.Policy, "session", plate, func() (*Result, error) {
		var res *Result
		err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			session, err := s.activeSession(ctx, garage.ID, plate)
			if err != nil {
				return err
			}

			if session.SpotID != nil {
				res = resultOf(session, session.BasePrice)
				res.Replayed = true
				return nil
			}

			if session.SectorID == nil {
				res = resultOf(session, session.BasePrice)
				res.Unresolved = apperror.Wrap(apperror.ErrSpotNotFound, "session %s has no sector", session.ID)
				return nil
			}

			spot, err := s.Spots.Match(ctx, *session.SectorID, ev.Lat, ev.Lng)
			if errors.Is(err, apperror.ErrSpotNotFound) || errors.Is(err, apperror.ErrAmbiguousSpotMatch) {
				res = resultOf(session, session.BasePrice)
				res.Unresolved = err
				return nil
			}
			if err != nil {
				return err
			}

			if _, err := s.Spots.Occupy(ctx, spot.ID); err != nil {
				return err
			}

			expected := session.Version
			session.SpotID = &spot.ID
			if err := s.Repo.UpdateSession(ctx, session, expected); err != nil {
				return err
			}

			res = resultOf(session, session.BasePrice)
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	switch {
	case res.Replayed:
		log.Debug("parked event replayed", "session_id", res.SessionID, "plate", plate)
	case res.Unresolved != nil:
		code, _ := apperror.CodeOf(res.Unresolved)
		log.LogSpotUnresolved(ctx, res.SessionID.String(), plate, string(code))

		msg := notifications.NewLifecycleMessage(notifications.LifecycleSpotUnresolved, res.SessionID, garage.ID, plate)
		msg.Sector = res.Sector
		msg.Reason = string(code)
		s.publish(ctx, msg)
	default:
		log.LogVehicleParked(ctx, res.SessionID.String(), plate, res.SpotID.String())

		msg := notifications.NewLifecycleMessage(notifications.LifecycleVehicleParked, res.SessionID, garage.ID, plate)
		msg.Sector = res.Sector
		msg.SpotID = res.SpotID
		s.publish(ctx, msg)
	}

	return res, nil
}

// Exit charges the stay, frees the spot if one was assigned, returns the
// sector capacity and closes the session in one transaction.
func (s *service) Exit(ctx context.Context, ev ExitEvent) (*Result, error) {
	plate := NormalizePlate(ev.LicensePlate)
	if plate == "" {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "license_plate is required")
	}
	if ev.ExitTime.IsZero() {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "exit_time is required")
	}

	garage, err := s.Garages.ResolveGarage(ctx, ev.GarageID)
	if err != nil {
		return nil, err
	}

	res, err := retry.OnConflict(ctx, s.Policy, "session", plate, func() (*Result, error) {
		var res *Result
		err := s.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
			session, err := s.activeSession(ctx, garage.ID, plate)
			if err != nil {
				return err
			}

			fee, err := s.Pricing.CalculateFee(session.EntryTime, ev.ExitTime, session.BasePrice)
			if err != nil {
				return err
			}

			if session.SpotID != nil {
				if _, err := s.Spots.Free(ctx, *session.SpotID); err != nil {
					return err
				}
			}
			if session.SectorID != nil {
				if _, err := s.Capacity.Release(ctx, *session.SectorID); err != nil {
					return err
				}
			}

			expected := session.Version
			exit := ev.ExitTime.UTC()
			session.ExitTime = &exit
			session.FinalPrice = decimal.NewNullDecimal(fee)
			if err := s.Repo.UpdateSession(ctx, session, expected); err != nil {
				return err
			}

			res = resultOf(session, fee)
			return nil
		})
		return res, err
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).LogSessionClosed(ctx, res.SessionID.String(), plate, res.Price.StringFixed(2))
	s.invalidateRevenue(ctx, garage.ID, ev.ExitTime)

	msg := notifications.NewLifecycleMessage(notifications.LifecycleSessionClosed, res.SessionID, garage.ID, plate)
	msg.Sector = res.Sector
	msg.SpotID = res.SpotID
	msg.Price = res.Price.StringFixed(2)
	s.publish(ctx, msg)

	return res, nil
}

// PlateStatus reports the active session of a plate and what it would be
// charged if it left at the given time.
func (s *service) PlateStatus(ctx context.Context, garageID *uuid.UUID, plate string, at time.Time) (*PlateStatusResponse, error) {
	plate = NormalizePlate(plate)
	if plate == "" {
		return nil, apperror.Wrap(apperror.ErrMissingArgument, "license_plate is required")
	}

	garage, err := s.Garages.ResolveGarage(ctx, garageID)
	if err != nil {
		return nil, err
	}

	session, err := s.activeSession(ctx, garage.ID, plate)
	if err != nil {
		return nil, err
	}

	if at.Before(session.EntryTime) {
		at = session.EntryTime
	}
	accrued, err := s.Pricing.CalculateFee(session.EntryTime, at, session.BasePrice)
	if err != nil {
		return nil, err
	}

	return toPlateStatusResponse(session, accrued, at), nil
}

func (s *service) activeSession(ctx context.Context, garageID uuid.UUID, plate string) (*ParkingSession, error) {
	session, err := s.Repo.FindActiveSession(ctx, garageID, plate)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Wrap(apperror.ErrNoActiveSession, "plate %s", plate)
		}
		return nil, fmt.Errorf("failed to look up active session: %w", err)
	}
	return session, nil
}

// lockPlate takes the per-plate lease. When the lease store is down the
// entry proceeds and the active-session unique index decides.
func (s *service) lockPlate(ctx context.Context, garageID uuid.UUID, plate string) (func(), error) {
	key := constants.BuildPlateLockKey(garageID.String(), plate)
	token := uuid.NewString()

	ok, err := s.Locker.Acquire(ctx, key, token)
	if err != nil {
		logger.FromContext(ctx).Warn("plate lease unavailable", "plate", plate, "error", err)
		return func() {}, nil
	}
	if !ok {
		return nil, apperror.Wrap(apperror.ErrVehicleAlreadyActive, "entry for plate %s already in progress", plate)
	}

	return func() {
		if err := s.Locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			logger.FromContext(ctx).Warn("failed to release plate lease", "plate", plate, "error", err)
		}
	}, nil
}

// publish is best effort: the transition is already committed
// invalidateRevenue drops the cached totals of the day a fee was booked on.
// A failure leaves entries to expire with their TTL.
func (s *service) invalidateRevenue(ctx context.Context, garageID uuid.UUID, exit time.Time) {
	if s.Cache == nil {
		return
	}
	pattern := constants.BuildRevenueDayPattern(garageID.String(), exit)
	if err := s.Cache.DeletePattern(ctx, pattern); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate revenue cache", "pattern", pattern, "error", err)
	}
}

func (s *service) publish(ctx context.Context, msg *notifications.LifecycleMessage) {
	if err := s.Publisher.Publish(ctx, msg); err != nil {
		logger.FromContext(ctx).Warn("failed to publish lifecycle message",
			"type", msg.Type,
			"session_id", msg.SessionID,
			"error", err,
		)
	}
}
