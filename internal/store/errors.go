package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrIdentityNotFound is returned when a lookup or update targets an
	// identity that does not exist.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrUsernameAlreadyExists is returned when an insert collides with an
	// existing username (compared case-insensitively).
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// ErrEmailAlreadyExists is returned when an insert collides with an
	// existing email (compared case-insensitively).
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrRoleNotFound is returned when an identity is created with a role
	// name that is not present in the roles table.
	ErrRoleNotFound = errors.New("role not found")

	// ErrUnsupportedDriver is returned when the configured storage driver is
	// none of postgres, sqlite or memory.
	ErrUnsupportedDriver = errors.New("unsupported storage driver")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing an INSERT or UPDATE
	// fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row fails.
	ErrScanningRow = errors.New("failed to scan identity row")
)
