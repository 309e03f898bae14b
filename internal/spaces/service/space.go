package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	spaceserrors "openspace/internal/spaces/errors"
	"openspace/internal/spaces/repository"
	"openspace/internal/spaces/validator"
	"openspace/pkg/config"
	apperrors "openspace/pkg/errors"
	"openspace/pkg/locker"
	"openspace/pkg/model"
	"openspace/pkg/sanitizer"
)

type SpaceService interface {
	Create(ctx context.Context, space *model.Space) error
	GetByID(ctx context.Context, id int64) (*model.Space, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Space, int64, error)
	Update(ctx context.Context, id int64, updates *model.SpaceUpdate) (*model.Space, error)
	Delete(ctx context.Context, id int64) error
}

// ReservationCounter reports how many reservations a space holds.
type ReservationCounter interface {
	CountBySpace(ctx context.Context, spaceID int64) (int64, error)
}

type spaceService struct {
	repo         repository.SpaceRepository
	reservations ReservationCounter
	locker       locker.Locker
	validator    *validator.SpaceValidator
	cfg          *config.Config
}

func NewSpaceService(
	repo repository.SpaceRepository,
	reservations ReservationCounter,
	lock locker.Locker,
	validator *validator.SpaceValidator,
	cfg *config.Config,
) SpaceService {
	return &spaceService{
		repo:         repo,
		reservations: reservations,
		locker:       lock,
		validator:    validator,
		cfg:          cfg,
	}
}

func (s *spaceService) Create(ctx context.Context, space *model.Space) error {
	sanitize(space)

	if err := s.validator.Validate(space); err != nil {
		s.cfg.Log.Warn("Space validation failed",
			"title", space.Title,
			"error", err,
		)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, space); err != nil {
		s.cfg.Log.Error("Failed to create space",
			"title", space.Title,
			"error", err,
		)
		return apperrors.Internal("Failed to create space", err)
	}

	s.cfg.Log.Info("Space created successfully",
		"id", space.ID,
		"title", space.Title,
		"operating_start", space.OperatingStart.String(),
		"operating_end", space.OperatingEnd.String(),
	)
	return nil
}

func (s *spaceService) GetByID(ctx context.Context, id int64) (*model.Space, error) {
	space, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve space")
	}
	return space, nil
}

func (s *spaceService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Space, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count  int64
		spaces []*model.Space
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if count, err = s.repo.Count(gctx); err != nil {
			s.cfg.Log.Error("Failed to count spaces", "error", err)
			return apperrors.Internal("Failed to count spaces", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if spaces, err = s.repo.FindAll(gctx, limit, offset); err != nil {
			s.cfg.Log.Error("Failed to get all spaces",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve spaces", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return spaces, count, nil
}

func (s *spaceService) Update(ctx context.Context, id int64, updates *model.SpaceUpdate) (*model.Space, error) {
	sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError(err)
	}

	release, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check space existence")
	}

	updates.Apply(existing)
	if err := s.validator.Validate(existing); err != nil {
		s.cfg.Log.Warn("Merged space validation failed",
			"id", id,
			"error", err,
		)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update space")
	}

	s.cfg.Log.Info("Space updated successfully", "id", id)
	return existing, nil
}

// Delete refuses to remove a space that still has reservations. The count and
// the delete run under the space lock, so no admission can slip in between.
func (s *spaceService) Delete(ctx context.Context, id int64) error {
	release, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to check space existence")
	}

	count, err := s.reservations.CountBySpace(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to count space reservations", "id", id, "error", err)
		return apperrors.Internal("Failed to check space reservations", err)
	}
	if count > 0 {
		return apperrors.Conflict(fmt.Sprintf(
			"Space %d still has %d reservation(s) and cannot be deleted", id, count,
		)).WithDetails(map[string]any{"reservations": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete space")
	}

	s.cfg.Log.Info("Space deleted successfully", "id", id)
	return nil
}

func (s *spaceService) lock(ctx context.Context, id int64) (locker.Release, error) {
	release, err := locker.Acquire(ctx, s.locker, locker.SpaceKey(id), s.cfg.LockWait)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			return nil, apperrors.Conflict("This space is currently being booked by another request. Please try again.")
		}
		s.cfg.Log.Error("Failed to lock space", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to lock space", err)
	}
	return release, nil
}

func (s *spaceService) mapRepoError(err error, id int64, message string) error {
	if errors.Is(err, spaceserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Space", strconv.FormatInt(id, 10))
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func validationError(err error) error {
	details := map[string]any{"error": err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details = map[string]any{"errors": verrs}
	}
	return apperrors.Validation("Space validation failed", details)
}

func sanitize(space *model.Space) {
	space.Title = sanitizer.NormalizeTitle(space.Title)
	space.Address = sanitizer.NormalizeAddress(space.Address)
	space.Description = sanitizer.NormalizeMultiline(space.Description)
	space.ImageURL = sanitizer.SanitizeImageURL(space.ImageURL)
}

func sanitizeUpdate(u *model.SpaceUpdate) {
	u.Title = sanitizer.NormalizeTitle(u.Title)
	u.Address = sanitizer.NormalizeAddress(u.Address)
	if u.Description != nil {
		d := sanitizer.NormalizeMultiline(*u.Description)
		u.Description = &d
	}
	if u.ImageURL != nil {
		url := sanitizer.SanitizeImageURL(*u.ImageURL)
		u.ImageURL = &url
	}
}
