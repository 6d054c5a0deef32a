package schema

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints the concurrency model relies on
func MigrateConstraints(db *gorm.DB) error {
	// One active session per vehicle and garage
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_parking_sessions_active_plate
		ON parking_sessions (garage_id, vehicle_license_plate)
		WHERE exit_time IS NULL;
	`).Error
	if err != nil {
		return err
	}

	// Occupancy can never leave [0, max_capacity]
	err = db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sectors_occupancy') THEN
				ALTER TABLE sectors
				ADD CONSTRAINT chk_sectors_occupancy
				CHECK (occupied_count >= 0 AND occupied_count <= max_capacity);
			END IF;
		END $$;
	`).Error
	if err != nil {
		return err
	}

	// At most one default garage
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_garages_single_default
		ON garages (is_default)
		WHERE is_default;
	`).Error
	if err != nil {
		return err
	}

	// Revenue queries scan closed sessions by exit day
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_parking_sessions_revenue
		ON parking_sessions (garage_id, exit_time, sector_code)
		WHERE exit_time IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	return nil
}
