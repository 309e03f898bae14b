package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrLockTimeout is returned when a lock could not be taken before the
// context was done.
var ErrLockTimeout = errors.New("lock not acquired before deadline")

// Release gives a lock back. Calling it more than once is a no-op.
type Release func()

// Locker serializes work that shares a key.
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
}

// Keyed is an in-process Locker holding one weighted semaphore per key.
// Entries are dropped once nobody holds or waits on them.
type Keyed struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  *semaphore.Weighted
	refs int
}

func NewKeyed() *Keyed {
	return &Keyed{slots: make(map[string]*slot)}
}

func (k *Keyed) Lock(ctx context.Context, key string) (Release, error) {
	k.mu.Lock()
	s, ok := k.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		k.slots[key] = s
	}
	s.refs++
	k.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		k.drop(key, s)
		return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.sem.Release(1)
			k.drop(key, s)
		})
	}, nil
}

func (k *Keyed) drop(key string, s *slot) {
	k.mu.Lock()
	defer k.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(k.slots, key)
	}
}

// Len reports how many keys are currently held or awaited.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.slots)
}

// Chain takes every locker in order and releases them in reverse.
func Chain(lockers ...Locker) Locker {
	return chain(lockers)
}

type chain []Locker

func (c chain) Lock(ctx context.Context, key string) (Release, error) {
	held := make([]Release, 0, len(c))
	releaseAll := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i]()
		}
	}

	for _, l := range c {
		release, err := l.Lock(ctx, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		held = append(held, release)
	}

	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}

// SpaceKey is the lock key guarding a space's reservations.
func SpaceKey(spaceID int64) string {
	return fmt.Sprintf("space:%d", spaceID)
}

// Acquire takes key on l, giving up after wait. The deadline only bounds the
// wait; the returned lock is held until released.
func Acquire(ctx context.Context, l Locker, key string, wait time.Duration) (Release, error) {
	if wait <= 0 {
		return l.Lock(ctx, key)
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return l.Lock(waitCtx, key)
}
