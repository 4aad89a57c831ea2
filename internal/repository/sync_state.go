package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"payment-ledger-sync/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSyncInProgress = errors.New("payment sync already in progress")

// SyncStateStore holds the cross-run lock and the outcome of the last run.
type SyncStateStore interface {
	// AcquireLock fails with ErrSyncInProgress while another holder's lease is live.
	AcquireLock(ctx context.Context, ttl time.Duration) (release func(), err error)
	SaveStatus(ctx context.Context, status model.SyncStatus) error
	// LastStatus returns ErrNotFound before the first run.
	LastStatus(ctx context.Context) (*model.SyncStatus, error)
}

// deletes the lock only if we still own it
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisSyncStateImpl struct {
	rdb       *redis.Client
	lockKey   string
	statusKey string
}

func NewRedisSyncStateStore(rdb *redis.Client, prefix string) SyncStateStore {
	return &redisSyncStateImpl{
		rdb:       rdb,
		lockKey:   prefix + ":payments:sync:lock",
		statusKey: prefix + ":payments:sync:last_status",
	}
}

func (s *redisSyncStateImpl) AcquireLock(ctx context.Context, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	ok, err := s.rdb.SetNX(ctx, s.lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !ok {
		return nil, ErrSyncInProgress
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseLockScript.Run(ctx, s.rdb, []string{s.lockKey}, token).Err()
	}
	return release, nil
}

func (s *redisSyncStateImpl) SaveStatus(ctx context.Context, status model.SyncStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal sync status: %w", err)
	}

	if err := s.rdb.Set(ctx, s.statusKey, data, 0).Err(); err != nil {
		return fmt.Errorf("save sync status: %w", err)
	}
	return nil
}

func (s *redisSyncStateImpl) LastStatus(ctx context.Context) (*model.SyncStatus, error) {
	data, err := s.rdb.Get(ctx, s.statusKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load sync status: %w", err)
	}

	var status model.SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("decode sync status: %w", err)
	}
	return &status, nil
}

type memorySyncStateImpl struct {
	mu        sync.Mutex
	lockToken string
	lockUntil time.Time
	last      *model.SyncStatus
	now       func() time.Time
}

// NewMemorySyncStateStore keeps sync state in process, for single-instance
// deployments without redis.
func NewMemorySyncStateStore() SyncStateStore {
	return &memorySyncStateImpl{now: time.Now}
}

func (s *memorySyncStateImpl) AcquireLock(ctx context.Context, ttl time.Duration) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lockToken != "" && s.now().Before(s.lockUntil) {
		return nil, ErrSyncInProgress
	}

	token := uuid.NewString()
	s.lockToken = token
	s.lockUntil = s.now().Add(ttl)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lockToken == token {
			s.lockToken = ""
		}
	}, nil
}

func (s *memorySyncStateImpl) SaveStatus(ctx context.Context, status model.SyncStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &status
	return nil
}

func (s *memorySyncStateImpl) LastStatus(ctx context.Context) (*model.SyncStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return nil, ErrNotFound
	}
	status := *s.last
	return &status, nil
}
