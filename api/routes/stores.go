package routes

import (
	"garagehub/internal/garages"
	"garagehub/internal/pricing"
	"garagehub/internal/revenue"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/database/memstore"

	"gorm.io/gorm"
)

// Stores bundles the persistence the services are built on
type Stores struct {
	Tx       database.Transactor
	Garages  garages.Repository
	Pricing  pricing.Repository
	Sessions sessions.Repository
	Revenue  revenue.Repository
}

// PostgresStores returns the gorm-backed repositories
func PostgresStores(db *gorm.DB) Stores {
	return Stores{
		Tx:       database.NewTransactor(db),
		Garages:  garages.NewRepository(db),
		Pricing:  pricing.NewRepository(db),
		Sessions: sessions.NewRepository(db),
		Revenue:  revenue.NewRepository(db),
	}
}

// MemoryStores serves every repository from one in-process store
func MemoryStores(store *memstore.Store) Stores {
	return Stores{
		Tx:       store,
		Garages:  store,
		Pricing:  store,
		Sessions: store,
		Revenue:  store,
	}
}
