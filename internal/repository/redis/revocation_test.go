package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/techy-Nik/assignment-13/pkg/errors"
)

func setupTestStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRevocationStore(client, 3*time.Second)
	return store, mr
}

func TestRevocationStore_RevokeThenIsRevoked(t *testing.T) {
	store, _ := setupTestStore(t)

	created, err := store.Revoke(context.Background(), "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, created)

	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationStore_IsRevoked_UnknownJTI(t *testing.T) {
	store, _ := setupTestStore(t)

	revoked, err := store.IsRevoked(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationStore_RevokeTwiceIsIdempotent(t *testing.T) {
	store, _ := setupTestStore(t)

	created, err := store.Revoke(context.Background(), "jti-1", time.Hour)
	require.NoError(t, err)
	assert.True(t, created)

	// Second revocation is a no-op and reports that it lost the claim.
	created, err = store.Revoke(context.Background(), "jti-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, created)

	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevocationStore_RecordExpiresWithTTL(t *testing.T) {
	store, mr := setupTestStore(t)

	_, err := store.Revoke(context.Background(), "jti-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "record must not outlive the token it invalidates")
}

func TestRevocationStore_NonPositiveTTLIsNoOp(t *testing.T) {
	store, _ := setupTestStore(t)

	created, err := store.Revoke(context.Background(), "jti-1", 0)
	require.NoError(t, err)
	assert.True(t, created)

	revoked, err := store.IsRevoked(context.Background(), "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "an expired token needs no revocation record")
}

func TestRevocationStore_ConcurrentRevokesHaveOneWinner(t *testing.T) {
	store, _ := setupTestStore(t)

	const racers = 8
	results := make(chan bool, racers)

	var start sync.WaitGroup
	start.Add(1)
	var done sync.WaitGroup
	for i := 0; i < racers; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			start.Wait()
			created, err := store.Revoke(context.Background(), "contested-jti", time.Hour)
			assert.NoError(t, err)
			results <- created
		}()
	}
	start.Done()
	done.Wait()
	close(results)

	winners := 0
	for created := range results {
		if created {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "SET NX must admit exactly one revocation")
}

func TestRevocationStore_StoreDownFailsClosed(t *testing.T) {
	store, mr := setupTestStore(t)
	mr.Close()

	_, err := store.IsRevoked(context.Background(), "jti-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavail)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.Status)

	_, err = store.Revoke(context.Background(), "jti-1", time.Hour)
	assert.ErrorIs(t, err, apperrors.ErrStoreUnavail)
}
