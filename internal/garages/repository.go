package garages

import (
	"context"
	"time"

	"garagehub/internal/shared/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface for garage structure operations
type Repository interface {
	// Garages
	CreateGarage(ctx context.Context, garage *Garage) error
	FindGarageByID(ctx context.Context, id uuid.UUID) (*Garage, error)
	FindDefaultGarage(ctx context.Context) (*Garage, error)
	ListGarages(ctx context.Context) ([]Garage, error)

	// Sectors
	CreateSector(ctx context.Context, sector *Sector) error
	FindSectorByID(ctx context.Context, id uuid.UUID) (*Sector, error)
	FindSectorByCode(ctx context.Context, garageID uuid.UUID, code string) (*Sector, error)
	ListSectors(ctx context.Context, garageID uuid.UUID) ([]Sector, error)
	UpdateSectorOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied int) error

	// Spots
	CreateSpot(ctx context.Context, spot *ParkingSpot) error
	FindSpotByID(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)
	ListSpotsBySector(ctx context.Context, sectorID uuid.UUID) ([]ParkingSpot, error)
	UpdateSpotOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied bool) error
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new garage repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ============= GARAGES =============

func (r *repository) CreateGarage(ctx context.Context, garage *Garage) error {
	return database.Translate(database.Conn(ctx, r.db).Create(garage).Error)
}

func (r *repository) FindGarageByID(ctx context.Context, id uuid.UUID) (*Garage, error) {
	var garage Garage
	if err := database.Conn(ctx, r.db).First(&garage, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &garage, nil
}

func (r *repository) FindDefaultGarage(ctx context.Context) (*Garage, error) {
	var garage Garage
	if err := database.Conn(ctx, r.db).Where("is_default = ?", true).First(&garage).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &garage, nil
}

func (r *repository) ListGarages(ctx context.Context) ([]Garage, error) {
	var garages []Garage
	err := database.Conn(ctx, r.db).Order("name ASC").Find(&garages).Error
	return garages, database.Translate(err)
}

// ============= SECTORS =============

func (r *repository) CreateSector(ctx context.Context, sector *Sector) error {
	return database.Translate(database.Conn(ctx, r.db).Create(sector).Error)
}

func (r *repository) FindSectorByID(ctx context.Context, id uuid.UUID) (*Sector, error) {
	var sector Sector
	if err := database.Conn(ctx, r.db).First(&sector, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &sector, nil
}

func (r *repository) FindSectorByCode(ctx context.Context, garageID uuid.UUID, code string) (*Sector, error) {
	var sector Sector
	err := database.Conn(ctx, r.db).
		Where("garage_id = ? AND sector_code = ?", garageID, code).
		First(&sector).Error
	if err != nil {
		return nil, database.Translate(err)
	}
	return &sector, nil
}

func (r *repository) ListSectors(ctx context.Context, garageID uuid.UUID) ([]Sector, error) {
	var sectors []Sector
	err := database.Conn(ctx, r.db).
		Where("garage_id = ?", garageID).
		Order("sector_code ASC").
		Find(&sectors).Error
	return sectors, database.Translate(err)
}

// UpdateSectorOccupancy writes the counter only if the row still carries
// expectedVersion, bumping the version on success.
func (r *repository) UpdateSectorOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied int) error {
	result := database.Conn(ctx, r.db).
		Model(&Sector{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"occupied_count": occupied,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrVersionConflict
	}
	return nil
}

// ============= SPOTS =============

func (r *repository) CreateSpot(ctx context.Context, spot *ParkingSpot) error {
	return database.Translate(database.Conn(ctx, r.db).Create(spot).Error)
}

func (r *repository) FindSpotByID(ctx context.Context, id uuid.UUID) (*ParkingSpot, error) {
	var spot ParkingSpot
	if err := database.Conn(ctx, r.db).First(&spot, "id = ?", id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &spot, nil
}

func (r *repository) ListSpotsBySector(ctx context.Context, sectorID uuid.UUID) ([]ParkingSpot, error) {
	var spots []ParkingSpot
	err := database.Conn(ctx, r.db).Where("sector_id = ?", sectorID).Find(&spots).Error
	return spots, database.Translate(err)
}

func (r *repository) UpdateSpotOccupancy(ctx context.Context, id uuid.UUID, expectedVersion int64, occupied bool) error {
	result := database.Conn(ctx, r.db).
		Model(&ParkingSpot{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"is_occupied": occupied,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.ErrVersionConflict
	}
	return nil
}
