package model

import "time"

type ReservationStatus string

const (
	StatusPending ReservationStatus = "Pending"
	StatusPayed   ReservationStatus = "Payed"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPayed:
		return true
	}
	return false
}

func (s ReservationStatus) String() string { return string(s) }

// Reservation is a priced, half-open [Start, End) claim on a Space.
type Reservation struct {
	ID        int64             `json:"id" bson:"_id"`
	SpaceID   int64             `json:"space_id" bson:"space_id" validate:"required,gt=0"`
	UserID    string            `json:"user_id" bson:"user_id" validate:"required,max=128"`
	Title     string            `json:"title" bson:"title" validate:"required,min=1,max=200"`
	Start     time.Time         `json:"start" bson:"start" validate:"required"`
	End       time.Time         `json:"end" bson:"end" validate:"required,gtfield=Start"`
	Status    ReservationStatus `json:"status" bson:"status" validate:"omitempty,reservation_status"`
	Total     float64           `json:"total" bson:"total"`
	CreatedAt time.Time         `json:"created" bson:"created"`
}

// PublicReservation is what anonymous callers see of a reservation: the
// occupied slot without who booked it or what they paid.
type PublicReservation struct {
	ID      int64             `json:"id"`
	SpaceID int64             `json:"space_id"`
	Title   string            `json:"title"`
	Start   time.Time         `json:"start"`
	End     time.Time         `json:"end"`
	Status  ReservationStatus `json:"status"`
}

func (r *Reservation) Public() PublicReservation {
	return PublicReservation{
		ID:      r.ID,
		SpaceID: r.SpaceID,
		Title:   r.Title,
		Start:   r.Start,
		End:     r.End,
		Status:  r.Status,
	}
}

// PublicReservations projects rs with Public.
func PublicReservations(rs []*Reservation) []PublicReservation {
	out := make([]PublicReservation, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Public())
	}
	return out
}

type ReservationUpdate struct {
	Title string     `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Apply copies the set fields of u onto r.
func (u *ReservationUpdate) Apply(r *Reservation) {
	if u.Title != "" {
		r.Title = u.Title
	}
	if u.Start != nil {
		r.Start = *u.Start
	}
	if u.End != nil {
		r.End = *u.End
	}
}

func (u *ReservationUpdate) IsEmpty() bool {
	return u.Title == "" && u.Start == nil && u.End == nil
}
