package kafka

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("42").
		WithValue(map[string]int{"id": 42}).
		WithEventType("reservation.invoice").
		WithSource("openspace").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if msg.Key != "42" {
		t.Errorf("Key = %q, want 42", msg.Key)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.GetEventType() != "reservation.invoice" {
		t.Errorf("event type = %q", msg.GetEventType())
	}

	var decoded map[string]int
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded["id"] != 42 {
		t.Errorf("decoded id = %d, want 42", decoded["id"])
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).Build()
	if err == nil {
		t.Fatal("expected encode error")
	}
}

func TestIncrementRetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("send", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("decode", errors.New("x")), ErrorTypePermanent},
		{"wrapped deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("bad recipient"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("send", errors.New("timeout"))
	if !ShouldRetry(transient, 0, 3) {
		t.Error("expected retry for transient error under limit")
	}
	if ShouldRetry(transient, 3, 3) {
		t.Error("expected no retry at limit")
	}
	if ShouldRetry(errors.New("invalid recipient"), 0, 3) {
		t.Error("expected no retry for permanent error")
	}
}
