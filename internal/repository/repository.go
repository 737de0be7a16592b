package repository

import (
	"context"
	"time"

	"github.com/techy-Nik/assignment-13/internal/domain"
)

// UserRepository defines the interface for credential persistence.
type UserRepository interface {
	// Create inserts a new user. A username collision yields a
	// duplicate-identity AppError.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByUsername retrieves a user by their (normalized) username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RevocationStore records revoked token identifiers (jti) until the token
// they belong to would have expired anyway.
type RevocationStore interface {
	// Revoke records the jti for ttl. It reports whether this call created
	// the record: false means the jti was already revoked (a no-op, so the
	// operation is idempotent). The ttl must cover any verification clock
	// leeway on top of the token's remaining lifetime; a non-positive ttl
	// is then a successful no-op, since such a token can no longer pass
	// verification anywhere.
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)

	// IsRevoked reports whether the jti has been revoked. A transport
	// failure returns a 503 AppError; callers must treat an unknown
	// revocation status as a rejection, never as valid.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
