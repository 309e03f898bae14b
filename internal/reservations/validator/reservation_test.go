package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"openspace/pkg/logger"
	"openspace/pkg/model"
)

func newTestValidator() *ReservationValidator {
	return NewReservationValidator(logger.New(logger.Config{Level: "info", Format: logger.JSON, Service: "test"}))
}

func validReservation() *model.Reservation {
	start := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	return &model.Reservation{
		SpaceID: 1,
		UserID:  "UserTestId",
		Title:   "Family shoot",
		Start:   start,
		End:     start.Add(2 * time.Hour),
		Status:  model.StatusPending,
	}
}

func TestReservationValidator_Validate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		mutate    func(r *model.Reservation)
		wantField string
	}{
		{"valid", func(*model.Reservation) {}, ""},
		{"status may be empty before admission", func(r *model.Reservation) { r.Status = "" }, ""},
		{"missing space", func(r *model.Reservation) { r.SpaceID = 0 }, "space_id"},
		{"missing user", func(r *model.Reservation) { r.UserID = "" }, "user_id"},
		{"missing title", func(r *model.Reservation) { r.Title = "" }, "title"},
		{"title too long", func(r *model.Reservation) { r.Title = strings.Repeat("x", 201) }, "title"},
		{"end before start", func(r *model.Reservation) { r.End = r.Start.Add(-time.Hour) }, "end"},
		{"end equals start", func(r *model.Reservation) { r.End = r.Start }, "end"},
		{"unknown status", func(r *model.Reservation) { r.Status = "Cancelled" }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReservation()
			tt.mutate(r)
			err := v.Validate(r)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s (%v)", verrs[0].Field, tt.wantField, verrs)
			}
		})
	}
}

func TestReservationValidator_ValidateUpdate(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	if err := v.ValidateUpdate(&model.ReservationUpdate{}); err == nil {
		t.Errorf("empty update should be rejected")
	}
	if err := v.ValidateUpdate(&model.ReservationUpdate{Start: &start, End: &before}); err == nil {
		t.Errorf("inverted interval should be rejected")
	}
	if err := v.ValidateUpdate(&model.ReservationUpdate{Title: "Renamed"}); err != nil {
		t.Errorf("title-only update should pass, got %v", err)
	}
}
