package main

import (
	"context"
	"fmt"
	"log"

	"garagehub/internal/garages"
	"garagehub/internal/pricing"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/constants"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/database/schema"
	"garagehub/pkg/cache"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting GarageHub Database Seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := schema.Migrate(db.PostgreSQL); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	garage, err := seeder.SeedAll(context.Background())
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Printf("✅ Seeded %q (%s)\n", garage.Name, garage.ID)

	fmt.Println("\n🎉 Seeding completed! Garage is ready for events.")
}

// CleanDatabase truncates every table, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"parking_sessions",
		"pricing_strategies",
		"parking_spots",
		"sectors",
		"garages",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll lays out the default garage and drops cached views of the old one
func (s *Seeder) SeedAll(ctx context.Context) (*garages.Garage, error) {
	fmt.Println("  🅿️  Seeding default garage...")

	garage, err := garages.Bootstrap(ctx,
		database.NewTransactor(s.db.PostgreSQL),
		garages.NewRepository(s.db.PostgreSQL),
		pricing.NewRepository(s.db.PostgreSQL),
		garages.DefaultLayout(),
	)
	if err != nil {
		return nil, err
	}

	if cacheService := cache.NewService(s.db.Redis); cacheService != nil {
		for _, pattern := range []string{constants.CACHE_PATTERN_GARAGES, constants.CACHE_PATTERN_REVENUE} {
			if err := cacheService.DeletePattern(ctx, pattern); err != nil {
				log.Printf("Warning: failed to clear cache %s: %v", pattern, err)
			}
		}
	}

	return garage, nil
}
