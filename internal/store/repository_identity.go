// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/models"
)

// identityRepository is the SQL implementation of [IdentityRepository].
// It works against PostgreSQL and SQLite; the dialect differences live in
// [DB].
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type identityRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewIdentityRepository constructs an [IdentityRepository] backed by db.
func NewIdentityRepository(db *DB, logger *logger.Logger) IdentityRepository {
	logger.Debug().Msg("creating identity repository")
	return &identityRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *identityRepository) FindByUsername(ctx context.Context, username string) (models.Identity, error) {
	return r.findOne(ctx, "*identityRepository.FindByUsername", byUsername(username))
}

func (r *identityRepository) FindByEmail(ctx context.Context, email string) (models.Identity, error) {
	return r.findOne(ctx, "*identityRepository.FindByEmail", byEmail(email))
}

// findOne loads a single identity and its roles.
//
// Error handling:
//   - no row → [ErrIdentityNotFound].
//   - query build failure → [ErrBuildingSQLQuery].
//   - any other driver-level error → [ErrScanningRow] / [ErrExecutingQuery].
func (r *identityRepository) findOne(ctx context.Context, funcName string, where sq.Sqlizer) (models.Identity, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildSelectIdentityQuery(where)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error building select identity query")
		return models.Identity{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	identity, err := scanIdentity(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Identity{}, ErrIdentityNotFound
	}
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error: scanning identity")
		return models.Identity{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	identity.Roles, err = r.loadRoles(ctx, identity.ID)
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("identity_id", identity.ID).Msg("error loading roles")
		return models.Identity{}, err
	}

	return identity, nil
}

func (r *identityRepository) loadRoles(ctx context.Context, identityID int64) ([]string, error) {
	query, args, err := r.db.buildSelectRolesQuery(identityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err = rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		roles = append(roles, role)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return roles, nil
}

func (r *identityRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildExistsUsernameQuery(username)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		log.Err(err).Str("func", "*identityRepository.ExistsByUsername").Msg("error checking username")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return true, nil
}

// Create inserts the identity row and its role rows in one transaction.
//
// A transaction that fails with a retryable error (deadlock, serialization
// failure, busy database) is run once more before giving up.
//
// Error handling:
//   - empty Roles or a role missing from the roles table → [ErrRoleNotFound].
//   - uniqueness collision → [ErrUsernameAlreadyExists] / [ErrEmailAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *identityRepository) Create(ctx context.Context, identity models.Identity) (models.Identity, error) {
	log := logger.FromContext(ctx)

	if len(identity.Roles) == 0 {
		return models.Identity{}, ErrRoleNotFound
	}

	now := r.now()
	if identity.CreatedAt.IsZero() {
		identity.CreatedAt = now
	}
	identity.UpdatedAt = now

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var id int64
		id, err = r.create(ctx, identity)
		if err == nil {
			identity.ID = id
			return identity, nil
		}
		if r.db.errorClassificator.Classify(err) != Retryable {
			break
		}
		log.Warn().Err(err).Str("func", "*identityRepository.Create").Msg("retrying identity creation")
	}

	if dup := r.db.uniqueViolation(err); dup != nil {
		log.Info().Str("username", identity.Username).Err(dup).Msg("identity already exists")
		return models.Identity{}, dup
	}
	if errors.Is(err, ErrRoleNotFound) {
		return models.Identity{}, err
	}

	log.Err(err).Str("func", "*identityRepository.Create").Msg("error creating identity")
	return models.Identity{}, err
}

func (r *identityRepository) create(ctx context.Context, identity models.Identity) (int64, error) {
	insertIdentity, identityArgs, err := r.db.buildInsertIdentityQuery(identity)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	err = r.db.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, insertIdentity, identityArgs...).Scan(&id); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		insertRoles, rolesArgs, err := r.db.buildInsertIdentityRolesQuery(id, identity.Roles)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		res, err := tx.ExecContext(ctx, insertRoles, rolesArgs...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		if affected != int64(len(identity.Roles)) {
			return ErrRoleNotFound
		}

		return nil
	})

	return id, err
}

// UpdateTwoFactor stores secret (NULL when empty) and the enabled flag.
// Returns [ErrIdentityNotFound] when no row matched.
func (r *identityRepository) UpdateTwoFactor(ctx context.Context, id int64, secret string, enabled bool) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.buildUpdateTwoFactorQuery(id, secret, enabled, r.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*identityRepository.UpdateTwoFactor").Int64("identity_id", id).Msg("error updating two-factor state")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrIdentityNotFound
	}

	return nil
}
