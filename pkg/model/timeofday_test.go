package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{"10-00", 10, 0, false},
		{"23-59", 23, 59, false},
		{"0-5", 0, 5, false},
		{" 09-30 ", 9, 30, false},
		{"24-00", 24, 0, false},
		{"24-01", 0, 0, true},
		{"25-00", 0, 0, true},
		{"10-60", 0, 0, true},
		{"10:00", 0, 0, true},
		{"-1-00", 0, 0, true},
		{"100-00", 0, 0, true},
		{"ab-cd", 0, 0, true},
		{"", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeOfDay) {
					t.Fatalf("expected ErrInvalidTimeOfDay, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Hour() != tt.hour || got.Minute() != tt.minute {
				t.Errorf("got %d-%d, want %d-%d", got.Hour(), got.Minute(), tt.hour, tt.minute)
			}
		})
	}
}

func TestTimeOfDay_Offset(t *testing.T) {
	tod := MustTimeOfDay(10, 30)
	if tod.Offset() != 10*time.Hour+30*time.Minute {
		t.Errorf("unexpected offset %s", tod.Offset())
	}
	if !MustTimeOfDay(9, 59).Before(tod) {
		t.Errorf("09-59 should be before 10-30")
	}
	if MustTimeOfDay(24, 0).Offset() != 24*time.Hour {
		t.Errorf("24-00 should be a full day")
	}
}

func TestTimeOfDay_ZeroValue(t *testing.T) {
	var tod TimeOfDay
	if !tod.IsZero() {
		t.Errorf("zero value should be unset")
	}
	if MustTimeOfDay(0, 0).IsZero() {
		t.Errorf("midnight is a valid, set value")
	}
	if tod.String() != "" {
		t.Errorf("unset value should print empty, got %q", tod.String())
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	space := Space{Title: "Loft", OperatingStart: MustTimeOfDay(10, 0), OperatingEnd: MustTimeOfDay(23, 0)}

	raw, err := json.Marshal(space)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if fields["operating_start"] != "10-00" || fields["operating_end"] != "23-00" {
		t.Errorf("expected HH-MM strings, got %v / %v", fields["operating_start"], fields["operating_end"])
	}

	var back Space
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.OperatingStart != space.OperatingStart || back.OperatingEnd != space.OperatingEnd {
		t.Errorf("round trip changed the window: %v-%v", back.OperatingStart, back.OperatingEnd)
	}

	if err := json.Unmarshal([]byte(`{"operating_start":"7am"}`), &back); !errors.Is(err, ErrInvalidTimeOfDay) {
		t.Errorf("expected ErrInvalidTimeOfDay for malformed input, got %v", err)
	}
}

func TestTimeOfDay_BSON(t *testing.T) {
	in := Space{ID: 1, OperatingStart: MustTimeOfDay(8, 15), OperatingEnd: MustTimeOfDay(24, 0)}

	raw, err := bson.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := bson.Raw(raw).Lookup("operating_start").StringValue(); got != "08-15" {
		t.Errorf("expected stored string 08-15, got %q", got)
	}

	var out Space
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.OperatingStart != in.OperatingStart || out.OperatingEnd != in.OperatingEnd {
		t.Errorf("round trip changed the window: %v-%v", out.OperatingStart, out.OperatingEnd)
	}
}

func TestReservationStatus(t *testing.T) {
	if !StatusPending.IsValid() || !StatusPayed.IsValid() {
		t.Errorf("known statuses must be valid")
	}
	if ReservationStatus("Cancelled").IsValid() {
		t.Errorf("there is no cancelled status")
	}
}

func TestUpdatesApply(t *testing.T) {
	price := 120.0
	start := MustTimeOfDay(9, 0)
	space := &Space{Title: "Old", PricePerHour: 100, OperatingStart: MustTimeOfDay(10, 0)}
	(&SpaceUpdate{Title: "New", PricePerHour: &price, OperatingStart: &start}).Apply(space)
	if space.Title != "New" || space.PricePerHour != 120 || space.OperatingStart != start {
		t.Errorf("space update not applied: %+v", space)
	}

	now := time.Date(2030, 1, 2, 12, 0, 0, 0, time.UTC)
	res := &Reservation{Title: "Shoot", Start: now, End: now.Add(time.Hour)}
	end := now.Add(2 * time.Hour)
	upd := &ReservationUpdate{End: &end}
	upd.Apply(res)
	if !res.End.Equal(end) || res.Title != "Shoot" {
		t.Errorf("reservation update not applied: %+v", res)
	}
	if upd.IsEmpty() || !(&ReservationUpdate{}).IsEmpty() {
		t.Errorf("IsEmpty mismatch")
	}
}
