package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"openspace/pkg/kafka"
	"openspace/pkg/model"
)

type mockGateway struct {
	mu            sync.Mutex
	invoices      []int64
	cancellations []int64
	recipients    []model.Recipient
	err           error
}

func (m *mockGateway) SendInvoice(ctx context.Context, to model.Recipient, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, r.ID)
	m.recipients = append(m.recipients, to)
	return m.err
}

func (m *mockGateway) SendCancellationNotice(ctx context.Context, to model.Recipient, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations = append(m.cancellations, id)
	m.recipients = append(m.recipients, to)
	return m.err
}

type mockSender struct {
	status int
	err    error
	sent   []*mail.SGMailV3
}

func (m *mockSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	m.sent = append(m.sent, email)
	if m.err != nil {
		return nil, m.err
	}
	return &rest.Response{StatusCode: m.status, Body: "body"}, nil
}

func testReservation() *model.Reservation {
	return &model.Reservation{
		ID:      7,
		SpaceID: 1,
		Title:   "Studio shoot",
		Start:   time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC),
		End:     time.Date(2030, 5, 1, 12, 30, 0, 0, time.UTC),
		Total:   5994,
		Status:  model.StatusPayed,
	}
}

func TestInvoiceEmail(t *testing.T) {
	to := model.Recipient{Email: "ann@example.com", Name: "Ann <Lee>"}
	email, err := InvoiceEmail(to, testReservation(), time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("InvoiceEmail() error = %v", err)
	}

	if email.Subject != InvoiceSubject {
		t.Errorf("Subject = %q", email.Subject)
	}
	for _, want := range []string{"#7", "Studio shoot", "2030-05-01 10:00", "2030-05-01 12:30", "5994.00", "2030-04-01 09:00 UTC", "Ann &lt;Lee&gt;"} {
		if !strings.Contains(email.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if !strings.Contains(email.Text, "5994.00") {
		t.Errorf("Text = %q", email.Text)
	}
}

func TestInvoiceEmail_NilReservation(t *testing.T) {
	if _, err := InvoiceEmail(model.Recipient{Email: "a@b.c"}, nil, time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestCancellationEmail(t *testing.T) {
	email := CancellationEmail(model.Recipient{Email: "a@b.c"}, 12)
	if email.Subject != "Reservation cancelled" {
		t.Errorf("Subject = %q", email.Subject)
	}
	if email.Text != "Reservation with id 12 cancelled. Money payed back" {
		t.Errorf("Text = %q", email.Text)
	}
}

func TestSendGridGateway(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		sendErr       error
		wantErr       bool
		wantTransient bool
	}{
		{"accepted", 202, nil, false, false},
		{"bad request", 400, nil, true, false},
		{"rate limited", 429, nil, true, true},
		{"server error", 503, nil, true, true},
		{"transport error", 0, errors.New("dial tcp: connection refused"), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &mockSender{status: tt.status, err: tt.sendErr}
			g := NewSendGridGatewayWithSender(sender, "noreply@openspace.test", "Open Space", nil)

			err := g.SendCancellationNotice(context.Background(), model.Recipient{Email: "ann@example.com"}, 3)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				transient := kafka.ClassifyError(err) == kafka.ErrorTypeTransient
				if transient != tt.wantTransient {
					t.Errorf("transient = %v, want %v (%v)", transient, tt.wantTransient, err)
				}
			}
			if len(sender.sent) != 1 {
				t.Fatalf("sent %d emails, want 1", len(sender.sent))
			}
			if sender.sent[0].Subject != CancellationSubject {
				t.Errorf("Subject = %q", sender.sent[0].Subject)
			}
		})
	}
}

type capturePublisher struct {
	msgs []kafka.Message
	err  error
}

func (c *capturePublisher) Publish(ctx context.Context, msg kafka.Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestKafkaGatewayAndRelay(t *testing.T) {
	pub := &capturePublisher{}
	g := NewKafkaGateway(pub)
	to := model.Recipient{Email: "ann@example.com", Name: "Ann"}

	if err := g.SendInvoice(context.Background(), to, testReservation()); err != nil {
		t.Fatalf("SendInvoice() error = %v", err)
	}
	if err := g.SendCancellationNotice(context.Background(), to, 9); err != nil {
		t.Fatalf("SendCancellationNotice() error = %v", err)
	}
	if len(pub.msgs) != 2 {
		t.Fatalf("published %d messages, want 2", len(pub.msgs))
	}
	if pub.msgs[0].Key != "7" || pub.msgs[0].GetEventType() != string(model.NotificationInvoice) {
		t.Errorf("invoice message = key %q type %q", pub.msgs[0].Key, pub.msgs[0].GetEventType())
	}

	gw := &mockGateway{}
	relay := NewRelay(gw)
	for _, msg := range pub.msgs {
		if err := relay.Handle(context.Background(), msg); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}
	if len(gw.invoices) != 1 || gw.invoices[0] != 7 {
		t.Errorf("invoices = %v", gw.invoices)
	}
	if len(gw.cancellations) != 1 || gw.cancellations[0] != 9 {
		t.Errorf("cancellations = %v", gw.cancellations)
	}
	if gw.recipients[0] != to {
		t.Errorf("recipient = %+v", gw.recipients[0])
	}
}

func TestRelay_Malformed(t *testing.T) {
	relay := NewRelay(&mockGateway{})

	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{"},
		{"no recipient", `{"kind":"reservation.cancelled","reservation_id":1}`},
		{"unknown kind", `{"kind":"reservation.moved","recipient":{"email":"a@b.c"}}`},
		{"invoice without reservation", `{"kind":"reservation.invoice","recipient":{"email":"a@b.c"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := relay.Handle(context.Background(), kafka.Message{Value: []byte(tt.value)})
			if kafka.ClassifyError(err) != kafka.ErrorTypePermanent {
				t.Errorf("expected permanent error, got %v", err)
			}
		})
	}
}

func TestDispatcher(t *testing.T) {
	gw := &mockGateway{err: errors.New("smtp down")}
	d := NewDispatcher(gw, time.Second, nil)

	r := testReservation()
	d.Invoice(model.Recipient{Email: "a@b.c"}, r)
	r.Total = 0
	d.CancellationNotice(model.Recipient{Email: "a@b.c"}, 4)
	d.Wait()

	gw.mu.Lock()
	defer gw.mu.Unlock()
	if len(gw.invoices) != 1 || len(gw.cancellations) != 1 {
		t.Fatalf("invoices = %v, cancellations = %v", gw.invoices, gw.cancellations)
	}
}
