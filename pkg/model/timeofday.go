package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const (
	maxHour          = 24
	maxMinute        = 59
	timeOfDaySep     = "-"
	minutesPerHour   = 60
	timeOfDayPattern = "HH-MM"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// TimeOfDay is a wall-clock time within a day, written as "HH-MM".
// Hours run 0..24 where "24-00" marks the end of the day. The zero value is
// unset and never equal to a parsed value.
type TimeOfDay struct {
	minutes int
	valid   bool
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > maxHour || minute < 0 || minute > maxMinute {
		return TimeOfDay{}, fmt.Errorf("%w: hours must be 0-%d and minutes 0-%d, got %d-%d", ErrInvalidTimeOfDay, maxHour, maxMinute, hour, minute)
	}
	if hour == maxHour && minute != 0 {
		return TimeOfDay{}, fmt.Errorf("%w: only 24-00 is allowed with hour 24", ErrInvalidTimeOfDay)
	}
	return TimeOfDay{minutes: hour*minutesPerHour + minute, valid: true}, nil
}

// MustTimeOfDay is NewTimeOfDay for constants known to be valid.
func MustTimeOfDay(hour, minute int) TimeOfDay {
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), timeOfDaySep)
	if !ok || !isShortNumber(hh) || !isShortNumber(mm) {
		return TimeOfDay{}, fmt.Errorf("%w: expected %s, got %q", ErrInvalidTimeOfDay, timeOfDayPattern, s)
	}
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	return NewTimeOfDay(hour, minute)
}

func isShortNumber(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t TimeOfDay) IsZero() bool { return !t.valid }

func (t TimeOfDay) Hour() int { return t.minutes / minutesPerHour }

func (t TimeOfDay) Minute() int { return t.minutes % minutesPerHour }

// Offset is the distance from midnight.
func (t TimeOfDay) Offset() time.Duration {
	return time.Duration(t.minutes) * time.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.minutes < other.minutes }

func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d-%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TimeOfDay{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a %s string", ErrInvalidTimeOfDay, timeOfDayPattern)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !t.valid {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(t.String())
}

func (t *TimeOfDay) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	if typ == bsontype.Null {
		*t = TimeOfDay{}
		return nil
	}
	s, ok := bson.RawValue{Type: typ, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("%w: stored value has bson type %s", ErrInvalidTimeOfDay, typ)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
