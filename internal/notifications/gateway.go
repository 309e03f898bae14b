package notifications

import (
	"context"

	"openspace/pkg/model"
)

// Gateway delivers the customer-facing messages of the reservation flow.
type Gateway interface {
	SendInvoice(ctx context.Context, to model.Recipient, r *model.Reservation) error
	SendCancellationNotice(ctx context.Context, to model.Recipient, reservationID int64) error
}
