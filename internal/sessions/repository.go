package sessions

import (
	"context"
	"time"

	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for parking session operations
type Repository interface {
	// CreateSession fails with database.ErrDuplicateKey when the plate
	// already has an active session in the garage.
	CreateSession(ctx context.Context, session *ParkingSession) error
	FindSessionByID(ctx context.Context, id uuid.UUID) (*ParkingSession, error)
	FindActiveSession(ctx context.Context, garageID uuid.UUID, plate string) (*ParkingSession, error)
	// UpdateSession persists spot, exit time and final price if the row is
	// still at expectedVersion.
	UpdateSession(ctx context.Context, session *ParkingSession, expectedVersion int64) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new session repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSession(ctx context.Context, session *ParkingSession) error {
	return database.Translate(database.Conn(ctx, r.db).Create(session).Error)
}

func (r *repository) FindSessionByID(ctx context.Context, id uuid.UUID) (*ParkingSession, error) {
	var session ParkingSession
	if err := database.Conn(ctx, r.db).First(&session, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &session, nil
}

func (r *repository) FindActiveSession(ctx context.Context, garageID uuid.UUID, plate string) (*ParkingSession, error) {
	var session ParkingSession
	err := database.Conn(ctx, r.db).
		Where("garage_id = ? AND vehicle_license_plate = ? AND exit_time IS NULL", garageID, plate).
		First(&session).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &session, nil
}

func (r *repository) UpdateSession(ctx context.Context, session *ParkingSession, expectedVersion int64) error {
	now := time.Now().UTC()
	result := database.Conn(ctx, r.db).
		Model(&ParkingSession{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Updates(map[string]interface{}{
			"spot_id":     session.SpotID,
			"exit_time":   session.ExitTime,
			"final_price": session.FinalPrice,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  now,
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrVersionConflict
	}

	session.Version = expectedVersion + 1
	session.UpdatedAt = now
	return nil
}
