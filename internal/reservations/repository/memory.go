package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	reservationserrors "openspace/internal/reservations/errors"
	"openspace/pkg/model"
)

// memoryReservationRepository keeps reservations in process memory. It backs
// the memory storage driver and service tests.
type memoryReservationRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]model.Reservation
}

func NewMemoryReservationRepository() ReservationRepository {
	return &memoryReservationRepository{items: make(map[int64]model.Reservation)}
}

func (r *memoryReservationRepository) Create(_ context.Context, reservation *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reservation.ID = r.nextID
	reservation.CreatedAt = reservation.CreatedAt.UTC().Truncate(time.Millisecond)
	r.items[reservation.ID] = *reservation
	return nil
}

func (r *memoryReservationRepository) FindByID(_ context.Context, id int64) (*model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	return &item, nil
}

func (r *memoryReservationRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	all := r.filter(func(model.Reservation) bool { return true })
	if offset >= int64(len(all)) {
		return []*model.Reservation{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryReservationRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *memoryReservationRepository) FindBySpace(_ context.Context, spaceID int64) ([]*model.Reservation, error) {
	return r.filter(func(item model.Reservation) bool { return item.SpaceID == spaceID }), nil
}

func (r *memoryReservationRepository) FindOverlapping(_ context.Context, spaceID int64, start, end time.Time) ([]*model.Reservation, error) {
	return r.filter(func(item model.Reservation) bool {
		return item.SpaceID == spaceID && item.Start.Before(end) && item.End.After(start)
	}), nil
}

func (r *memoryReservationRepository) FindByUser(_ context.Context, userID string) ([]*model.Reservation, error) {
	return r.filter(func(item model.Reservation) bool { return item.UserID == userID }), nil
}

func (r *memoryReservationRepository) SearchByTitle(_ context.Context, spaceID int64, title string) ([]*model.Reservation, error) {
	needle := strings.ToLower(title)
	return r.filter(func(item model.Reservation) bool {
		return item.SpaceID == spaceID && strings.Contains(strings.ToLower(item.Title), needle)
	}), nil
}

func (r *memoryReservationRepository) CountBySpace(_ context.Context, spaceID int64) (int64, error) {
	return int64(len(r.filter(func(item model.Reservation) bool { return item.SpaceID == spaceID }))), nil
}

func (r *memoryReservationRepository) Update(_ context.Context, reservation *model.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[reservation.ID]
	if !ok {
		return reservationserrors.ErrNotFound
	}
	item.Title = reservation.Title
	item.Start = reservation.Start
	item.End = reservation.End
	item.Total = reservation.Total
	r.items[item.ID] = item
	return nil
}

func (r *memoryReservationRepository) UpdateStatus(_ context.Context, id int64, status model.ReservationStatus) (*model.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, reservationserrors.ErrNotFound
	}
	item.Status = status
	r.items[id] = item
	return &item, nil
}

func (r *memoryReservationRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return reservationserrors.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// ExecuteTransaction runs fn directly. Writers are serialized by the space
// lock held by the caller, and each call above is atomic on its own.
func (r *memoryReservationRepository) ExecuteTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (r *memoryReservationRepository) filter(keep func(model.Reservation) bool) []*model.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Reservation{}
	for _, item := range r.items {
		if keep(item) {
			copied := item
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
