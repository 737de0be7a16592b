package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/techy-Nik/assignment-13/pkg/errors"
)

const keyPrefix = "revoked:"

// revokedMarker is the value stored under a revoked jti. Only key existence
// matters; the value itself is never read.
const revokedMarker = "1"

// RevocationStore implements repository.RevocationStore using Redis.
// Records auto-expire with the TTL they were revoked with, so the store
// never outlives the tokens it invalidates.
type RevocationStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRevocationStore creates a Redis-backed revocation store. Every call
// runs under opTimeout so an unreachable store fails fast instead of
// stalling request handling.
func NewRevocationStore(client *redis.Client, opTimeout time.Duration) *RevocationStore {
	return &RevocationStore{
		client:  client,
		timeout: opTimeout,
	}
}

// Revoke records jti for ttl using SET NX, which makes concurrent
// revocations of the same jti race safely: exactly one caller observes
// created=true. Revoking an already-revoked jti is a no-op.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		// Nothing left to invalidate. Callers must pass a TTL that covers
		// any verification leeway, so a non-positive TTL means the token
		// can no longer pass verification anywhere.
		return true, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	created, err := s.client.SetNX(ctx, keyPrefix+jti, revokedMarker, ttl).Result()
	if err != nil {
		return false, apperrors.Unavailable("revocation store unreachable", fmt.Errorf("redis setnx: %w", err))
	}

	return created, nil
}

// IsRevoked reports whether jti has a live revocation record.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, apperrors.Unavailable("revocation store unreachable", fmt.Errorf("redis exists: %w", err))
	}

	return n > 0, nil
}
