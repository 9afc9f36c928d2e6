package domain

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ApplicationRepository defines the interface for application persistence.
// The store enforces client_id uniqueness; Create reports a duplicate with
// ErrUniquenessCollision so the caller can regenerate. Update never touches
// the client identifier and cannot collide.
type ApplicationRepository interface {
	// Create persists a new application
	Create(ctx context.Context, app *Application) error

	// FindByID finds an application by ID
	FindByID(ctx context.Context, id ulid.ULID) (*Application, error)

	// FindByClientID finds an application by its client identifier
	FindByClientID(ctx context.Context, clientID string) (*Application, error)

	// Update updates a registered application
	Update(ctx context.Context, app *Application) error

	// Delete removes an application along with its grants and tokens
	Delete(ctx context.Context, id ulid.ULID) error

	// List lists applications with pagination
	List(ctx context.Context, limit, offset int) ([]*Application, error)
}
