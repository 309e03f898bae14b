package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"openspace/pkg/model"
)

const (
	InvoiceSubject      = "Reservation invoice"
	CancellationSubject = "Reservation cancelled"

	displayTimeLayout = "2006-01-02 15:04"
)

//go:embed templates/invoice.html
var templateFS embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templateFS, "templates/invoice.html"))

// Email is a rendered message, independent of the transport that delivers it.
type Email struct {
	To      model.Recipient
	Subject string
	Text    string
	HTML    string
}

type invoiceView struct {
	ReservationID int64
	Title         string
	FullName      string
	Start         string
	End           string
	IssuedAt      string
	Total         string
}

func InvoiceEmail(to model.Recipient, r *model.Reservation, issuedAt time.Time) (Email, error) {
	if r == nil {
		return Email{}, fmt.Errorf("invoice requires a reservation")
	}

	view := invoiceView{
		ReservationID: r.ID,
		Title:         r.Title,
		FullName:      to.Name,
		Start:         r.Start.Format(displayTimeLayout),
		End:           r.End.Format(displayTimeLayout),
		IssuedAt:      issuedAt.UTC().Format(displayTimeLayout) + " UTC",
		Total:         strconv.FormatFloat(r.Total, 'f', 2, 64),
	}
	if view.FullName == "" {
		view.FullName = to.Email
	}

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return Email{}, fmt.Errorf("failed to render invoice: %w", err)
	}

	text := fmt.Sprintf("Reservation %d (%s) from %s to %s. Total: %s. Issued %s.",
		view.ReservationID, view.Title, view.Start, view.End, view.Total, view.IssuedAt)

	return Email{To: to, Subject: InvoiceSubject, Text: text, HTML: buf.String()}, nil
}

func CancellationEmail(to model.Recipient, reservationID int64) Email {
	return Email{
		To:      to,
		Subject: CancellationSubject,
		Text:    fmt.Sprintf("Reservation with id %d cancelled. Money payed back", reservationID),
	}
}
