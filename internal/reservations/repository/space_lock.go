package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"openspace/pkg/config"
	mongotx "openspace/pkg/db/mongo"
	"openspace/pkg/locker"
	"openspace/pkg/model"
)

const (
	LockCollectionName = "Space_locks"

	lockRetryMin = 10 * time.Millisecond
	lockRetryMax = 200 * time.Millisecond
)

// SpaceLockRepository is a locker.Locker backed by advisory lock documents,
// so replicas sharing one database serialize admissions per space. A lock
// that outlives its TTL is taken over by the next caller.
type SpaceLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	releaseTTL time.Duration
}

func NewSpaceLockRepository(cfg *config.Config) *SpaceLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &SpaceLockRepository{
		collection: db.Collection(LockCollectionName),
		ttl:        cfg.LockTTL,
		releaseTTL: cfg.WriteTimeout,
	}
}

func (r *SpaceLockRepository) Lock(ctx context.Context, key string) (locker.Release, error) {
	lockID := "lock_" + key
	owner := uuid.NewString()
	backoff := lockRetryMin

	for {
		now := time.Now().UTC()
		lock := &model.SpaceLock{
			ID:        lockID,
			Owner:     owner,
			ExpiresAt: now.Add(r.ttl),
			CreatedAt: now,
		}

		_, err := r.collection.InsertOne(ctx, lock)
		if err == nil {
			return r.release(lockID, owner), nil
		}
		if !mongotx.IsDuplicateKey(err) {
			return nil, acquireError(ctx, key, err)
		}

		// the TTL monitor only sweeps once a minute
		if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "expires_at": bson.M{"$lt": now}}); err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("failed to clear expired space lock: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", locker.ErrLockTimeout, key, ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, lockRetryMax)
	}
}

// acquireError reports an insert that failed because the wait ran out as
// locker.ErrLockTimeout.
func acquireError(ctx context.Context, key string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %v", locker.ErrLockTimeout, key, err)
	}
	return fmt.Errorf("failed to acquire space lock: %w", err)
}

func (r *SpaceLockRepository) release(lockID, owner string) locker.Release {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), r.releaseTTL)
			defer cancel()
			// owner filter keeps a late release from dropping a lock taken over after expiry
			_, _ = r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
		})
	}
}
