package repository

import (
	"context"
	"errors"
	"testing"

	spaceserrors "openspace/internal/spaces/errors"
	"openspace/pkg/model"
)

func newSpace(title string) *model.Space {
	return &model.Space{
		Title:          title,
		PricePerHour:   100,
		Address:        "Main st. 1",
		OperatingStart: model.MustTimeOfDay(8, 0),
		OperatingEnd:   model.MustTimeOfDay(20, 0),
	}
}

func TestMemorySpaceRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySpaceRepository()

	for _, title := range []string{"Loft", "Garden", "Studio"} {
		if err := repo.Create(ctx, newSpace(title)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	count, _ := repo.Count(ctx)
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	page, err := repo.FindAll(ctx, 2, 1)
	if err != nil {
		t.Fatalf("FindAll() error = %v", err)
	}
	if len(page) != 2 || page[0].Title != "Garden" || page[1].Title != "Studio" {
		t.Errorf("FindAll(2, 1) = %v", page)
	}

	got, err := repo.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	got.Title = "Changed"
	again, _ := repo.FindByID(ctx, 1)
	if again.Title != "Loft" {
		t.Error("FindByID returned a shared value")
	}

	got.Title = "Loft 2"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	again, _ = repo.FindByID(ctx, 1)
	if again.Title != "Loft 2" || !again.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("after Update = %+v", again)
	}

	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, spaceserrors.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(ctx, &model.Space{ID: 99}); !errors.Is(err, spaceserrors.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}
