package store

import (
	"context"

	"github.com/MKhiriev/go-auth-gate/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// IdentityRepository persists identities and their role assignments.
// Username and email lookups are case-insensitive.
type IdentityRepository interface {
	FindByUsername(ctx context.Context, username string) (models.Identity, error)
	FindByEmail(ctx context.Context, email string) (models.Identity, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create inserts identity together with its roles atomically and returns
	// it with ID set. A uniqueness collision yields ErrUsernameAlreadyExists
	// or ErrEmailAlreadyExists; an unknown role yields ErrRoleNotFound.
	Create(ctx context.Context, identity models.Identity) (models.Identity, error)

	// UpdateTwoFactor replaces the second-factor secret and flag. An empty
	// secret clears it.
	UpdateTwoFactor(ctx context.Context, id int64, secret string, enabled bool) error
}

// RoleRepository answers questions about the roles table.
type RoleRepository interface {
	RoleExists(ctx context.Context, name string) (bool, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
