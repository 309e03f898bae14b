package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"openspace/internal/admission"
	reservationserrors "openspace/internal/reservations/errors"
	"openspace/internal/reservations/repository"
	"openspace/internal/reservations/validator"
	spaceserrors "openspace/internal/spaces/errors"
	"openspace/pkg/config"
	apperrors "openspace/pkg/errors"
	"openspace/pkg/locker"
	"openspace/pkg/model"
	"openspace/pkg/sanitizer"
)

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Reservation, error)
	ListBySpace(ctx context.Context, spaceID int64) ([]*model.Reservation, error)
	SearchByTitle(ctx context.Context, spaceID int64, title string) ([]*model.Reservation, error)
	Update(ctx context.Context, id int64, updates *model.ReservationUpdate) (*model.Reservation, error)
	Pay(ctx context.Context, id int64, recipient model.Recipient) (*model.Reservation, error)
	Cancel(ctx context.Context, id int64, recipient model.Recipient) error
	Delete(ctx context.Context, id int64) error
}

// SpaceReader is the read side of the space catalog that admission needs.
type SpaceReader interface {
	FindByID(ctx context.Context, id int64) (*model.Space, error)
}

// Notifier queues customer messages. Calls must not block on delivery.
type Notifier interface {
	Invoice(to model.Recipient, r *model.Reservation)
	CancellationNotice(to model.Recipient, reservationID int64)
}

const lockBusyMessage = "This space is currently being booked by another request. Please try again."

type reservationService struct {
	repo      repository.ReservationRepository
	spaces    SpaceReader
	locker    locker.Locker
	validator *validator.ReservationValidator
	notifier  Notifier
	cfg       *config.Config
	now       func() time.Time
}

type Option func(*reservationService)

// WithClock replaces time.Now, for tests that need a fixed "now".
func WithClock(now func() time.Time) Option {
	return func(s *reservationService) { s.now = now }
}

func NewReservationService(
	repo repository.ReservationRepository,
	spaces SpaceReader,
	lock locker.Locker,
	validator *validator.ReservationValidator,
	notifier Notifier,
	cfg *config.Config,
	opts ...Option,
) ReservationService {
	s := &reservationService{
		repo:      repo,
		spaces:    spaces,
		locker:    lock,
		validator: validator,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	reservation.ID = 0
	reservation.Status = ""
	reservation.Total = 0
	reservation.Title = sanitizer.NormalizeTitle(reservation.Title)
	reservation.Start = s.localize(reservation.Start)
	reservation.End = s.localize(reservation.End)

	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed",
			"space_id", reservation.SpaceID,
			"user_id", reservation.UserID,
			"error", err,
		)
		return validationError(err)
	}

	release, err := s.lock(ctx, reservation.SpaceID)
	if err != nil {
		return err
	}
	defer release()

	var admitted *model.Reservation
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		space, err := s.loadSpace(txCtx, reservation.SpaceID)
		if err != nil {
			return err
		}

		existing, err := s.repo.FindOverlapping(txCtx, reservation.SpaceID, reservation.Start, reservation.End)
		if err != nil {
			return apperrors.Internal("Failed to load space reservations", err)
		}

		admitted, err = admit(admission.ModeCreate, reservation, existing, space, s.now())
		if err != nil {
			return err
		}

		if err := s.repo.Create(txCtx, admitted); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.logRefusal("create", reservation, err)
		return err
	}

	*reservation = *admitted
	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"space_id", reservation.SpaceID,
		"user_id", reservation.UserID,
		"start", reservation.Start,
		"end", reservation.End,
		"total", reservation.Total,
	)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve reservation")
	}
	return reservation, nil
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count        int64
		reservations []*model.Reservation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if count, err = s.repo.Count(gctx); err != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", err)
			return apperrors.Internal("Failed to count reservations", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if reservations, err = s.repo.FindAll(gctx, limit, offset); err != nil {
			s.cfg.Log.Error("Failed to get all reservations",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			return apperrors.Internal("Failed to retrieve reservations", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return reservations, count, nil
}

func (s *reservationService) ListByUser(ctx context.Context, userID string) ([]*model.Reservation, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	reservations, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user reservations", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) ListBySpace(ctx context.Context, spaceID int64) ([]*model.Reservation, error) {
	if _, err := s.loadSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	reservations, err := s.repo.FindBySpace(ctx, spaceID)
	if err != nil {
		s.cfg.Log.Error("Failed to list space reservations", "space_id", spaceID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}
	return reservations, nil
}

// SearchByTitle matches case-insensitively on a substring of the title. A
// blank term yields ErrNoSearchTerm instead of every reservation.
func (s *reservationService) SearchByTitle(ctx context.Context, spaceID int64, title string) ([]*model.Reservation, error) {
	term := sanitizer.SearchTerm(title)
	if term == "" {
		return nil, reservationserrors.ErrNoSearchTerm
	}

	reservations, err := s.repo.SearchByTitle(ctx, spaceID, term)
	if err != nil {
		s.cfg.Log.Error("Failed to search reservations",
			"space_id", spaceID,
			"title", term,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to search reservations", err)
	}
	return reservations, nil
}

// Update re-runs admission on the merged reservation. The past-date check is
// skipped, status and creation time are kept, and the total is recomputed.
func (s *reservationService) Update(ctx context.Context, id int64, updates *model.ReservationUpdate) (*model.Reservation, error) {
	updates.Title = sanitizer.NormalizeTitle(updates.Title)
	if updates.Start != nil {
		start := s.localize(*updates.Start)
		updates.Start = &start
	}
	if updates.End != nil {
		end := s.localize(*updates.End)
		updates.End = &end
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError(err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check reservation existence")
	}

	release, err := s.lock(ctx, current.SpaceID)
	if err != nil {
		return nil, err
	}
	defer release()

	var admitted *model.Reservation
	err = s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return s.mapRepoError(err, id, "Failed to check reservation existence")
		}

		updates.Apply(existing)
		existing.Start = s.localize(existing.Start)
		existing.End = s.localize(existing.End)
		if err := s.validator.Validate(existing); err != nil {
			return validationError(err)
		}

		space, err := s.loadSpace(txCtx, existing.SpaceID)
		if err != nil {
			return err
		}

		others, err := s.repo.FindOverlapping(txCtx, existing.SpaceID, existing.Start, existing.End)
		if err != nil {
			return apperrors.Internal("Failed to load space reservations", err)
		}

		admitted, err = admit(admission.ModeUpdate, existing, others, space, s.now())
		if err != nil {
			return err
		}

		if err := s.repo.Update(txCtx, admitted); err != nil {
			return s.mapRepoError(err, id, "Failed to update reservation")
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Reservation update refused", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Reservation updated successfully",
		"id", id,
		"start", admitted.Start,
		"end", admitted.End,
		"total", admitted.Total,
	)
	return admitted, nil
}

// Pay marks the reservation Payed and queues the invoice. Paying twice is
// allowed and sends a second invoice.
func (s *reservationService) Pay(ctx context.Context, id int64, recipient model.Recipient) (*model.Reservation, error) {
	reservation, err := s.repo.UpdateStatus(ctx, id, model.StatusPayed)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to pay reservation")
	}

	s.cfg.Log.Info("Reservation payed", "id", id, "total", reservation.Total)
	if s.canNotify(recipient, id) {
		s.notifier.Invoice(recipient, reservation)
	}
	return reservation, nil
}

// Cancel removes the reservation and queues a cancellation notice. Delivery
// failures do not undo the cancellation.
func (s *reservationService) Cancel(ctx context.Context, id int64, recipient model.Recipient) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to cancel reservation")
	}

	s.cfg.Log.Info("Reservation cancelled", "id", id)
	if s.canNotify(recipient, id) {
		s.notifier.CancellationNotice(recipient, id)
	}
	return nil
}

func (s *reservationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete reservation")
	}
	s.cfg.Log.Info("Reservation deleted successfully", "id", id)
	return nil
}

func (s *reservationService) canNotify(recipient model.Recipient, id int64) bool {
	if s.notifier == nil {
		return false
	}
	if recipient.Email == "" {
		s.cfg.Log.Warn("No recipient email, notification skipped", "id", id)
		return false
	}
	return true
}

func (s *reservationService) loadSpace(ctx context.Context, spaceID int64) (*model.Space, error) {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		if errors.Is(err, spaceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Space", strconv.FormatInt(spaceID, 10))
		}
		s.cfg.Log.Error("Failed to load space", "space_id", spaceID, "error", err)
		return nil, apperrors.Internal("Failed to load space", err)
	}
	return space, nil
}

func (s *reservationService) lock(ctx context.Context, spaceID int64) (locker.Release, error) {
	release, err := locker.Acquire(ctx, s.locker, locker.SpaceKey(spaceID), s.cfg.LockWait)
	if err != nil {
		if errors.Is(err, locker.ErrLockTimeout) {
			s.cfg.Log.Warn("Space lock busy", "space_id", spaceID)
			return nil, apperrors.Conflict(lockBusyMessage)
		}
		s.cfg.Log.Error("Failed to lock space", "space_id", spaceID, "error", err)
		return nil, apperrors.Internal("Failed to lock space", err)
	}
	return release, nil
}

// localize moves t into the service location, where operating windows and
// calendar days are evaluated.
func (s *reservationService) localize(t time.Time) time.Time {
	if s.cfg.Location == nil || t.IsZero() {
		return t
	}
	return t.In(s.cfg.Location)
}

func (s *reservationService) mapRepoError(err error, id int64, message string) error {
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Reservation", strconv.FormatInt(id, 10))
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *reservationService) logRefusal(operation string, r *model.Reservation, err error) {
	appErr := apperrors.AsAppError(err)
	attrs := []any{
		"operation", operation,
		"space_id", r.SpaceID,
		"user_id", r.UserID,
		"start", r.Start,
		"end", r.End,
		"code", appErr.Code,
		"error", err,
	}
	if appErr.StatusCode() >= 500 {
		s.cfg.Log.Error("Reservation failed", attrs...)
		return
	}
	s.cfg.Log.Warn("Reservation refused", attrs...)
}

func admit(mode admission.Mode, candidate *model.Reservation, existing []*model.Reservation, space *model.Space, now time.Time) (*model.Reservation, error) {
	admitted, err := admission.Admit(mode, candidate, existing, space, now)
	if err != nil {
		var rejection *admission.Rejection
		if errors.As(err, &rejection) {
			return nil, rejection.AppError()
		}
		return nil, err
	}
	return admitted, nil
}

func validationError(err error) error {
	details := map[string]any{"error": err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details = map[string]any{"errors": verrs}
	}
	return apperrors.Validation("Reservation validation failed", details)
}
