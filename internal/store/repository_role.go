package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
)

// roleRepository is the SQL implementation of [RoleRepository].
type roleRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	logger.Debug().Msg("creating role repository")
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *roleRepository) RoleExists(ctx context.Context, name string) (bool, error) {
	query, args, err := r.db.buildRoleExistsQuery(name)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		logger.FromContext(ctx).Err(err).Str("func", "*roleRepository.RoleExists").Str("role", name).Msg("error checking role")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return true, nil
}
