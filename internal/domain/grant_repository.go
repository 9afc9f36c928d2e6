package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// GrantRepository defines the interface for authorization grant persistence.
type GrantRepository interface {
	// Create stores a new grant
	Create(ctx context.Context, grant *Grant) error

	// FindByCode finds a grant by its code value
	FindByCode(ctx context.Context, code string) (*Grant, error)

	// ConsumeByCode atomically removes the grant with the given code and
	// returns it. At most one caller ever receives a given grant; every
	// other caller gets ErrGrantNotFound.
	ConsumeByCode(ctx context.Context, code string) (*Grant, error)

	// Delete removes a grant by code
	Delete(ctx context.Context, code string) error

	// DeleteByApplicationID removes all grants issued to an application
	DeleteByApplicationID(ctx context.Context, applicationID ulid.ULID) error

	// DeleteExpired deletes grants that expired at or before the given time
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
