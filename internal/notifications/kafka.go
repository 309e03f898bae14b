package notifications

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"openspace/pkg/kafka"
	"openspace/pkg/model"
)

const eventSource = "openspace"

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaGateway hands notifications to the notifier worker through a topic.
// Messages are keyed by reservation id so events for one reservation stay ordered.
type KafkaGateway struct {
	publisher Publisher
	now       func() time.Time
}

func NewKafkaGateway(publisher Publisher) *KafkaGateway {
	return &KafkaGateway{publisher: publisher, now: time.Now}
}

func (g *KafkaGateway) SendInvoice(ctx context.Context, to model.Recipient, r *model.Reservation) error {
	if r == nil {
		return fmt.Errorf("invoice requires a reservation")
	}
	return g.publish(ctx, model.Notification{
		Kind:          model.NotificationInvoice,
		Recipient:     to,
		ReservationID: r.ID,
		Reservation:   r,
		IssuedAt:      g.now().UTC(),
	})
}

func (g *KafkaGateway) SendCancellationNotice(ctx context.Context, to model.Recipient, reservationID int64) error {
	return g.publish(ctx, model.Notification{
		Kind:          model.NotificationCancellation,
		Recipient:     to,
		ReservationID: reservationID,
		IssuedAt:      g.now().UTC(),
	})
}

func (g *KafkaGateway) publish(ctx context.Context, n model.Notification) error {
	msg, err := kafka.NewMessage().
		WithKey(strconv.FormatInt(n.ReservationID, 10)).
		WithValue(n).
		WithEventType(string(n.Kind)).
		WithSource(eventSource).
		Build()
	if err != nil {
		return err
	}
	if err := g.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", n.Kind, err)
	}
	return nil
}
