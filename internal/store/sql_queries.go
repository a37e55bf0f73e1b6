package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-auth-gate/models"
)

const (
	identitiesTable    = "identities"
	rolesTable         = "roles"
	identityRolesTable = "identity_roles"
)

// identityColumns is the column list scanned by scanIdentity, in order.
var identityColumns = []string{
	"identity_id",
	"username",
	"email",
	"password_hash",
	"enabled",
	"locked",
	"credentials_expiry",
	"account_expiry",
	"two_factor_secret",
	"two_factor_enabled",
	"sign_up_method",
	"created_at",
	"updated_at",
}

// buildSelectIdentityQuery selects one identity matching where.
func (db *DB) buildSelectIdentityQuery(where sq.Sqlizer) (string, []any, error) {
	return db.builder.
		Select(identityColumns...).
		From(identitiesTable).
		Where(where).
		Limit(1).
		ToSql()
}

func byUsername(username string) sq.Sqlizer {
	return sq.Expr("LOWER(username) = LOWER(?)", username)
}

func byEmail(email string) sq.Sqlizer {
	return sq.Expr("LOWER(email) = LOWER(?)", email)
}

func byID(id int64) sq.Sqlizer {
	return sq.Eq{"identity_id": id}
}

// buildSelectRolesQuery lists the role names assigned to an identity.
func (db *DB) buildSelectRolesQuery(identityID int64) (string, []any, error) {
	return db.builder.
		Select("r.role_name").
		From(identityRolesTable + " ir").
		Join(rolesTable + " r ON r.role_id = ir.role_id").
		Where(sq.Eq{"ir.identity_id": identityID}).
		OrderBy("r.role_id").
		ToSql()
}

// buildExistsUsernameQuery returns a single row when username is taken.
func (db *DB) buildExistsUsernameQuery(username string) (string, []any, error) {
	return db.builder.
		Select("1").
		From(identitiesTable).
		Where(byUsername(username)).
		Limit(1).
		ToSql()
}

// buildRoleExistsQuery returns a single row when the role is defined.
func (db *DB) buildRoleExistsQuery(name string) (string, []any, error) {
	return db.builder.
		Select("1").
		From(rolesTable).
		Where(sq.Eq{"role_name": name}).
		Limit(1).
		ToSql()
}

// buildInsertIdentityQuery inserts the identity row and returns its id.
func (db *DB) buildInsertIdentityQuery(identity models.Identity) (string, []any, error) {
	return db.builder.
		Insert(identitiesTable).
		Columns(identityColumns[1:]...).
		Values(
			identity.Username,
			identity.Email,
			nullString(identity.PasswordHash),
			identity.Enabled,
			identity.Locked,
			nullTime(identity.CredentialsExpiry),
			nullTime(identity.AccountExpiry),
			nullString(identity.TwoFactorSecret),
			identity.TwoFactorEnabled,
			identity.SignUpMethod,
			identity.CreatedAt,
			identity.UpdatedAt,
		).
		Suffix("RETURNING identity_id").
		ToSql()
}

// buildInsertIdentityRolesQuery assigns roles by name in one statement.
// Unknown names are silently skipped by the join, so callers compare the
// affected row count with len(roles).
func (db *DB) buildInsertIdentityRolesQuery(identityID int64, roles []string) (string, []any, error) {
	return db.builder.
		Insert(identityRolesTable).
		Columns("identity_id", "role_id").
		Select(
			sq.Select().
				Column(sq.Expr("CAST(? AS BIGINT)", identityID)).
				Column("role_id").
				From(rolesTable).
				Where(sq.Eq{"role_name": roles}),
		).
		ToSql()
}

// buildUpdateTwoFactorQuery sets the second-factor columns of one identity.
func (db *DB) buildUpdateTwoFactorQuery(id int64, secret string, enabled bool, now time.Time) (string, []any, error) {
	return db.builder.
		Update(identitiesTable).
		Set("two_factor_secret", nullString(secret)).
		Set("two_factor_enabled", enabled).
		Set("updated_at", now).
		Where(byID(id)).
		ToSql()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanIdentity reads identityColumns into an Identity. Roles are loaded
// separately.
func scanIdentity(row rowScanner) (models.Identity, error) {
	var (
		identity          models.Identity
		passwordHash      sql.NullString
		twoFactorSecret   sql.NullString
		credentialsExpiry sql.NullTime
		accountExpiry     sql.NullTime
	)

	err := row.Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&passwordHash,
		&identity.Enabled,
		&identity.Locked,
		&credentialsExpiry,
		&accountExpiry,
		&twoFactorSecret,
		&identity.TwoFactorEnabled,
		&identity.SignUpMethod,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return models.Identity{}, err
	}

	identity.PasswordHash = passwordHash.String
	identity.TwoFactorSecret = twoFactorSecret.String
	identity.CredentialsExpiry = credentialsExpiry.Time
	identity.AccountExpiry = accountExpiry.Time

	return identity, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
