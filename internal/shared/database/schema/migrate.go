// Package schema owns the relational layout of the garage tables.
package schema

import (
	"fmt"

	"garagehub/internal/garages"
	"garagehub/internal/pricing"
	"garagehub/internal/sessions"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to enable uuid-ossp: %w", err)
	}

	err := db.AutoMigrate(
		&garages.Garage{},
		&garages.Sector{},
		&garages.ParkingSpot{},
		&pricing.PricingStrategy{},
		&sessions.ParkingSession{},
	)
	if err != nil {
		return err
	}

	return MigrateConstraints(db)
}
