package model

import "time"

type NotificationKind string

const (
	NotificationInvoice      NotificationKind = "reservation.invoice"
	NotificationCancellation NotificationKind = "reservation.cancelled"
)

// Recipient is who a notification is addressed to.
type Recipient struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name,omitempty"`
}

// Notification is the event relayed to the notifier worker.
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	Recipient     Recipient        `json:"recipient"`
	ReservationID int64            `json:"reservation_id"`
	Reservation   *Reservation     `json:"reservation,omitempty"`
	IssuedAt      time.Time        `json:"issued_at"`
}
