package admission

import (
	"fmt"
	"math"
	"time"

	"openspace/pkg/model"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Decision is the outcome of Evaluate. Rejection is nil when the candidate
// was accepted, in which case Total holds its price.
type Decision struct {
	Total     float64
	Rejection *Rejection
}

func (d Decision) Accepted() bool {
	return d.Rejection == nil
}

// Evaluate runs the admission checks. space must not be nil; existing may
// contain reservations of other spaces and the candidate itself, both are
// ignored.
func Evaluate(mode Mode, candidate *model.Reservation, existing []*model.Reservation, space *model.Space, now time.Time) Decision {
	if !candidate.End.After(candidate.Start) {
		return reject(KindInvalidInterval, "Reservation end must be after its start")
	}

	for _, r := range existing {
		if r == nil || r.ID == candidate.ID || r.SpaceID != candidate.SpaceID {
			continue
		}
		if Overlaps(r.Start, r.End, candidate.Start, candidate.End) {
			rej := reject(KindConflict, fmt.Sprintf(
				"Reservation overlaps with an existing reservation (%s - %s)",
				r.Start.Format(time.RFC3339),
				r.End.Format(time.RFC3339),
			))
			rej.Rejection.ConflictingID = r.ID
			return rej
		}
	}

	if mode == ModeCreate && candidate.Start.Before(now) {
		return reject(KindPastDate, "You can't make a reservation on a date before now")
	}

	if !WithinWindow(candidate.Start, candidate.End, space.OperatingStart, space.OperatingEnd) {
		return reject(KindScheduleViolation, fmt.Sprintf(
			"Reservation must fall within the space schedule (%s to %s) on a single day",
			space.OperatingStart,
			space.OperatingEnd,
		))
	}

	return Decision{Total: Price(candidate.Start, candidate.End, space.PricePerHour)}
}

// Admit evaluates candidate and, when accepted, returns a copy carrying the
// computed total. On create the copy is also stamped Pending with a UTC
// creation time; on update status and creation time are kept. A refusal is
// returned as a *Rejection.
func Admit(mode Mode, candidate *model.Reservation, existing []*model.Reservation, space *model.Space, now time.Time) (*model.Reservation, error) {
	decision := Evaluate(mode, candidate, existing, space, now)
	if !decision.Accepted() {
		return nil, decision.Rejection
	}

	admitted := *candidate
	admitted.Total = decision.Total
	if mode == ModeCreate {
		admitted.Status = model.StatusPending
		admitted.CreatedAt = now.UTC()
	}
	return &admitted, nil
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// WithinWindow reports whether an interval lies on one calendar day (in
// start's location) and inside the [opens, closes] time-of-day window.
func WithinWindow(start, end time.Time, opens, closes model.TimeOfDay) bool {
	end = end.In(start.Location())

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}

	return sinceMidnight(start) >= opens.Offset() && sinceMidnight(end) <= closes.Offset()
}

func sinceMidnight(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond())
}

// Price is pricePerHour times the interval length in hours, counting whole
// minutes, rounded to cents. Empty or inverted intervals cost nothing.
func Price(start, end time.Time, pricePerHour float64) float64 {
	d := end.Sub(start)
	if d <= 0 || pricePerHour <= 0 {
		return 0
	}
	hours := float64(d/time.Minute) / 60
	return math.Round(hours*pricePerHour*100) / 100
}

func reject(kind Kind, message string) Decision {
	return Decision{Rejection: &Rejection{Kind: kind, Message: message}}
}
