package notifications

import (
	"context"
	"time"

	"openspace/pkg/logger"
	"openspace/pkg/model"
)

// LogGateway renders messages and writes them to the log instead of sending them.
type LogGateway struct {
	log *logger.Logger
}

func NewLogGateway(log *logger.Logger) *LogGateway {
	if log == nil {
		log = logger.Discard()
	}
	return &LogGateway{log: log.Component("notifications")}
}

func (g *LogGateway) SendInvoice(ctx context.Context, to model.Recipient, r *model.Reservation) error {
	email, err := InvoiceEmail(to, r, time.Now())
	if err != nil {
		return err
	}
	g.log.Info("invoice", "to", to.Email, "subject", email.Subject, "text", email.Text)
	return nil
}

func (g *LogGateway) SendCancellationNotice(ctx context.Context, to model.Recipient, reservationID int64) error {
	email := CancellationEmail(to, reservationID)
	g.log.Info("cancellation notice", "to", to.Email, "subject", email.Subject, "text", email.Text)
	return nil
}
