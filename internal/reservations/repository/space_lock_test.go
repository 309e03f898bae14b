package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"openspace/pkg/locker"
)

func TestAcquireError(t *testing.T) {
	insertErr := errors.New("server selection error: context deadline exceeded")

	expired, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-expired.Done()

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()

	tests := []struct {
		name        string
		ctx         context.Context
		wantTimeout bool
	}{
		{name: "wait expired during insert", ctx: expired, wantTimeout: true},
		{name: "caller cancelled", ctx: cancelled, wantTimeout: true},
		{name: "live context", ctx: context.Background(), wantTimeout: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := acquireError(tt.ctx, "space:7", insertErr)
			if got := errors.Is(err, locker.ErrLockTimeout); got != tt.wantTimeout {
				t.Fatalf("errors.Is(%v, ErrLockTimeout) = %v, want %v", err, got, tt.wantTimeout)
			}
			if !tt.wantTimeout && !errors.Is(err, insertErr) {
				t.Errorf("error %v does not wrap the insert error", err)
			}
		})
	}
}
