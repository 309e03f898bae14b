package notifications

import (
	"context"
	"sync"
	"time"

	"openspace/pkg/logger"
	"openspace/pkg/model"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher sends notifications in the background so a slow or failing
// gateway never delays or fails the request that triggered it.
type Dispatcher struct {
	gateway Gateway
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(gateway Gateway, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Discard()
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{
		gateway: gateway,
		timeout: timeout,
		log:     log.Component("dispatcher"),
	}
}

func (d *Dispatcher) Invoice(to model.Recipient, r *model.Reservation) {
	snapshot := *r
	d.dispatch("invoice", snapshot.ID, func(ctx context.Context) error {
		return d.gateway.SendInvoice(ctx, to, &snapshot)
	})
}

func (d *Dispatcher) CancellationNotice(to model.Recipient, reservationID int64) {
	d.dispatch("cancellation", reservationID, func(ctx context.Context) error {
		return d.gateway.SendCancellationNotice(ctx, to, reservationID)
	})
}

// Wait blocks until every in-flight send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(kind string, reservationID int64, send func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				d.log.Error("notification panicked", "kind", kind, "reservation_id", reservationID, "panic", rec)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := send(ctx); err != nil {
			d.log.Error("failed to send notification",
				"kind", kind,
				"reservation_id", reservationID,
				"error", err,
			)
			return
		}
		d.log.Debug("notification sent", "kind", kind, "reservation_id", reservationID)
	}()
}
