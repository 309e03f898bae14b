package config

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestParse_Defaults(t *testing.T) {
	t.Setenv(EnvJWTSecret, testSecret)
	t.Setenv(EnvStorageDriver, "")

	cfg, err := Parse("test")
	if err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.StorageDriver != StorageMongo {
		t.Errorf("expected default storage %q, got %q", StorageMongo, cfg.StorageDriver)
	}
	if cfg.Location == nil {
		t.Errorf("expected Location to be resolved")
	}
	if cfg.TrustProxy {
		t.Errorf("expected TrustProxy off by default")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSAllowedOrigins)
	}
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv(EnvJWTSecret, testSecret)
	t.Setenv(EnvStorageDriver, "MEMORY")
	t.Setenv(EnvLockWait, "750ms")
	t.Setenv(EnvTimeZone, "UTC")
	t.Setenv(EnvCORSAllowedOrigins, "https://a.example, https://b.example")
	t.Setenv(EnvTrustProxy, "true")

	cfg, err := Parse("test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Errorf("expected memory storage, got %q", cfg.StorageDriver)
	}
	if cfg.LockWait != 750*time.Millisecond {
		t.Errorf("expected 750ms lock wait, got %s", cfg.LockWait)
	}
	if cfg.Location != time.UTC {
		t.Errorf("expected UTC location, got %v", cfg.Location)
	}
	if !cfg.TrustProxy {
		t.Errorf("expected TrustProxy from env")
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Setenv(EnvJWTSecret, "short")
	t.Setenv(EnvPort, "99999")
	t.Setenv(EnvNotifier, NotifierSendGrid)
	t.Setenv(EnvLockMode, "redis")

	_, err := Parse("test")
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{
		"Port must be between",
		"JWTSecret must be at least",
		"SendGridAPIKey cannot be empty",
		"LockMode must be one of",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !strings.HasPrefix(msg, "Configuration validation failed:") {
		t.Errorf("unexpected prefix: %q", msg)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017")
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("got %q", got)
	}
}

func TestNormalizePagination(t *testing.T) {
	if NormalizePaginationLimit(0) != 10 {
		t.Errorf("zero limit should default to 10")
	}
	if NormalizePaginationLimit(500) != DefaultPaginationLimit {
		t.Errorf("limit should be capped")
	}
	if NormalizeOffset(-5) != 0 {
		t.Errorf("negative offset should clamp to zero")
	}
}

func TestParseRelay(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  string
		notifier string
	}{
		{
			name:     "sendgrid",
			env:      map[string]string{EnvSendGridAPIKey: "key", EnvSendGridFromEmail: "noreply@example.com"},
			notifier: NotifierSendGrid,
		},
		{
			name:     "log",
			env:      map[string]string{EnvNotifier: "LOG"},
			notifier: NotifierLog,
		},
		{
			name:    "sendgrid without key",
			env:     map[string]string{EnvNotifier: NotifierSendGrid},
			wantErr: "SendGridAPIKey",
		},
		{
			name:    "kafka loop",
			env:     map[string]string{EnvNotifier: NotifierKafka},
			wantErr: "for the relay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvNotifier, "")
			t.Setenv(EnvSendGridAPIKey, "")
			t.Setenv(EnvSendGridFromEmail, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := ParseRelay("test")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Notifier != tt.notifier {
				t.Errorf("notifier = %q, want %q", cfg.Notifier, tt.notifier)
			}
			if cfg.NotificationsTopic != DefaultNotificationsTopic {
				t.Errorf("topic = %q", cfg.NotificationsTopic)
			}
		})
	}
}
