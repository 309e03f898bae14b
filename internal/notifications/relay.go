package notifications

import (
	"context"
	"fmt"

	"openspace/pkg/kafka"
	"openspace/pkg/model"
)

// Relay consumes notification events and delivers them through a Gateway.
type Relay struct {
	gateway Gateway
}

func NewRelay(gateway Gateway) *Relay {
	return &Relay{gateway: gateway}
}

// Handle is a kafka.MessageHandler. Malformed events are permanent failures
// and go straight to the dead letter topic.
func (r *Relay) Handle(ctx context.Context, msg kafka.Message) error {
	var n model.Notification
	if err := msg.DecodeValue(&n); err != nil {
		return kafka.NewPermanentError("decode notification", err)
	}
	if n.Recipient.Email == "" {
		return kafka.NewPermanentError("decode notification", fmt.Errorf("event %s has no recipient", msg.GetEventID()))
	}

	switch n.Kind {
	case model.NotificationInvoice:
		if n.Reservation == nil {
			return kafka.NewPermanentError("decode notification", fmt.Errorf("invoice event %s has no reservation", msg.GetEventID()))
		}
		return r.gateway.SendInvoice(ctx, n.Recipient, n.Reservation)
	case model.NotificationCancellation:
		return r.gateway.SendCancellationNotice(ctx, n.Recipient, n.ReservationID)
	default:
		return kafka.NewPermanentError("decode notification", fmt.Errorf("unknown notification kind %q", n.Kind))
	}
}
