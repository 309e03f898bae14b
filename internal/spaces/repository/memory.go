package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	spaceserrors "openspace/internal/spaces/errors"
	"openspace/pkg/model"
)

type memorySpaceRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]model.Space
}

func NewMemorySpaceRepository() SpaceRepository {
	return &memorySpaceRepository{items: make(map[int64]model.Space)}
}

func (r *memorySpaceRepository) Create(_ context.Context, space *model.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC().Truncate(time.Millisecond)
	space.ID = r.nextID
	space.CreatedAt = now
	space.UpdatedAt = now
	r.items[space.ID] = *space
	return nil
}

func (r *memorySpaceRepository) FindByID(_ context.Context, id int64) (*model.Space, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, spaceserrors.ErrNotFound
	}
	return &item, nil
}

func (r *memorySpaceRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Space, error) {
	r.mu.RLock()
	all := make([]*model.Space, 0, len(r.items))
	for _, item := range r.items {
		item := item
		all = append(all, &item)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= int64(len(all)) {
		return []*model.Space{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memorySpaceRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *memorySpaceRepository) Update(_ context.Context, space *model.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.items[space.ID]
	if !ok {
		return spaceserrors.ErrNotFound
	}
	space.CreatedAt = existing.CreatedAt
	space.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.items[space.ID] = *space
	return nil
}

func (r *memorySpaceRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return spaceserrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memorySpaceRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
