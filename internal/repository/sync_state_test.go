package repository

import (
	"os"
	"testing"
	"time"

	"payment-ledger-sync/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSyncStateStore(t *testing.T, store SyncStateStore) {
	ctx := t.Context()

	_, err := store.LastStatus(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	release, err := store.AcquireLock(ctx, time.Minute)
	require.NoError(t, err)

	_, err = store.AcquireLock(ctx, time.Minute)
	assert.ErrorIs(t, err, ErrSyncInProgress)

	release()
	release2, err := store.AcquireLock(ctx, time.Minute)
	require.NoError(t, err)
	// a stale release must not drop the new holder's lock
	release()
	_, err = store.AcquireLock(ctx, time.Minute)
	assert.ErrorIs(t, err, ErrSyncInProgress)
	release2()

	status := model.SyncStatus{RunID: "run-1", Mode: model.SyncModeFull, Count: 3, Successful: 2, Failed: 1}
	require.NoError(t, store.SaveStatus(ctx, status))

	got, err := store.LastStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, model.SyncModeFull, got.Mode)
	assert.Equal(t, 2, got.Successful)
}

func TestMemorySyncStateStore(t *testing.T) {
	exerciseSyncStateStore(t, NewMemorySyncStateStore())
}

func TestMemorySyncStateLockExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemorySyncStateStore().(*memorySyncStateImpl)
	store.now = func() time.Time { return now }

	_, err := store.AcquireLock(t.Context(), time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.AcquireLock(t.Context(), time.Minute)
	assert.NoError(t, err)
}

func TestRedisSyncStateStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	exerciseSyncStateStore(t, NewRedisSyncStateStore(rdb, "test-"+uuid.NewString()))
}
