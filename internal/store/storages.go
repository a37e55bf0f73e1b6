package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
)

// Storages bundles the repositories used by the service layer.
type Storages struct {
	IdentityRepository IdentityRepository
	RoleRepository     RoleRepository

	db *DB
}

// NewStorages opens the backend selected by cfg, applies migrations and
// builds the repositories. The memory driver needs neither.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	driver, err := cfg.ResolveDriver()
	if err != nil {
		return nil, err
	}

	var db *DB
	switch driver {
	case config.DriverMemory:
		log.Info().Str("driver", driver).Msg("using in-memory identity store")
		memory := NewMemoryStore()
		return &Storages{IdentityRepository: memory, RoleRepository: memory}, nil
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("driver", driver).Msg("error applying migrations")
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("driver", driver).Msg("identity store is ready")

	return &Storages{
		IdentityRepository: NewIdentityRepository(db, log),
		RoleRepository:     NewRoleRepository(db, log),
		db:                 db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
