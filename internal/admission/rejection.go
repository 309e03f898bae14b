package admission

import (
	"fmt"
	"strconv"

	apperrors "openspace/pkg/errors"
)

type Kind string

const (
	KindInvalidInterval   Kind = "InvalidInterval"
	KindConflict          Kind = "Conflict"
	KindPastDate          Kind = "PastDate"
	KindScheduleViolation Kind = "ScheduleViolation"
)

// Rejection explains why a candidate was refused.
type Rejection struct {
	Kind          Kind
	Message       string
	ConflictingID int64
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

// AppError maps the rejection onto the service error taxonomy.
func (r *Rejection) AppError() *apperrors.AppError {
	switch r.Kind {
	case KindConflict:
		return apperrors.Conflict(r.Message).WithDetails(map[string]any{
			"conflicting_reservation_id": strconv.FormatInt(r.ConflictingID, 10),
		})
	case KindPastDate:
		return apperrors.PastDate(r.Message)
	case KindScheduleViolation:
		return apperrors.ScheduleViolation(r.Message)
	default:
		return apperrors.Validation(r.Message, map[string]any{"end": "must be after start"})
	}
}
