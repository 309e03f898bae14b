package notifications

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"openspace/pkg/kafka"
	"openspace/pkg/logger"
	"openspace/pkg/model"
)

// MailSender is the part of the SendGrid client the gateway needs.
type MailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridGateway struct {
	sender    MailSender
	fromEmail string
	fromName  string
	now       func() time.Time
	log       *logger.Logger
}

func NewSendGridGateway(apiKey, fromEmail, fromName string, log *logger.Logger) *SendGridGateway {
	return NewSendGridGatewayWithSender(sendgrid.NewSendClient(apiKey), fromEmail, fromName, log)
}

func NewSendGridGatewayWithSender(sender MailSender, fromEmail, fromName string, log *logger.Logger) *SendGridGateway {
	if log == nil {
		log = logger.Discard()
	}
	return &SendGridGateway{
		sender:    sender,
		fromEmail: fromEmail,
		fromName:  fromName,
		now:       time.Now,
		log:       log.Component("sendgrid"),
	}
}

func (g *SendGridGateway) SendInvoice(ctx context.Context, to model.Recipient, r *model.Reservation) error {
	email, err := InvoiceEmail(to, r, g.now())
	if err != nil {
		return err
	}
	return g.deliver(ctx, email)
}

func (g *SendGridGateway) SendCancellationNotice(ctx context.Context, to model.Recipient, reservationID int64) error {
	return g.deliver(ctx, CancellationEmail(to, reservationID))
}

func (g *SendGridGateway) deliver(ctx context.Context, email Email) error {
	from := mail.NewEmail(g.fromName, g.fromEmail)
	recipient := mail.NewEmail(email.To.Name, email.To.Email)
	message := mail.NewSingleEmail(from, email.Subject, recipient, email.Text, email.HTML)

	response, err := g.sender.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		g.log.Error("SendGrid rejected email",
			"subject", email.Subject,
			"status", response.StatusCode,
			"body", response.Body,
		)
		err := fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
		if response.StatusCode == http.StatusTooManyRequests || response.StatusCode >= 500 {
			return kafka.NewTransientError("email delivery", err)
		}
		return err
	}

	g.log.Info("email sent", "subject", email.Subject, "status", response.StatusCode)
	return nil
}
