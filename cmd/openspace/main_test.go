package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"openspace/pkg/app"
	"openspace/pkg/auth"
	"openspace/pkg/client"
	"openspace/pkg/config"
	"openspace/pkg/logger"
	"openspace/pkg/model"
)

const testSecret = "end-to-end-secret-value"

type sentMessage struct {
	kind          string
	to            string
	reservationID int64
}

type recordingGateway struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (g *recordingGateway) SendInvoice(_ context.Context, to model.Recipient, r *model.Reservation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{kind: "invoice", to: to.Email, reservationID: r.ID})
	return nil
}

func (g *recordingGateway) SendCancellationNotice(_ context.Context, to model.Recipient, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{kind: "cancellation", to: to.Email, reservationID: id})
	return nil
}

func (g *recordingGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

func testConfig() *config.Config {
	return &config.Config{
		StorageDriver:       config.StorageMemory,
		LockMode:            config.LockLocal,
		LockTTL:             5 * time.Second,
		LockWait:            2 * time.Second,
		TimeZone:            "UTC",
		Location:            time.UTC,
		Port:                "8080",
		JWTSecret:           testSecret,
		CORSAllowedOrigins:  []string{"*"},
		Notifier:            config.NotifierLog,
		NotificationTimeout: time.Second,
		RateLimitRequests:   1000,
		RateLimitWindow:     time.Minute,
		RequestTimeout:      5 * time.Second,
		IdempotencyTTL:      time.Hour,
		MaxRequestSize:      1 << 20,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		IdleTimeout:         5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		Client: client.NewClient(),
	}
}

func issue(t *testing.T, id auth.Identity) string {
	t.Helper()
	tok, err := auth.NewAuthenticator(testSecret, nil).IssueToken(id, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	return tok
}

func expectStatus(t *testing.T, step string, resp *client.Response, err error, want int) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", step, err)
	}
	if resp.StatusCode != want {
		t.Fatalf("%s: status = %d, want %d (%s)", step, resp.StatusCode, want, client.GetErrorMessage(resp))
	}
}

func TestBookingLifecycle(t *testing.T) {
	cfg := testConfig()
	gateway := &recordingGateway{}
	handlers, dispatcher := initServices(cfg, gateway)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers...)
	server := httptest.NewServer(serverApp.Handler())
	defer server.Close()

	ctx := context.Background()
	base := client.NewHttpClient(server.URL)
	if err := base.WaitForHealthy(ctx, 5*time.Second); err != nil {
		t.Fatal(err)
	}
	resp, err := base.GET(ctx, "/ready")
	expectStatus(t, "ready", resp, err, http.StatusOK)

	admin := base.WithToken(issue(t, auth.Identity{UserID: "root", Email: "root@example.com", Role: auth.RoleAdmin}))
	alice := base.WithToken(issue(t, auth.Identity{UserID: "alice", Email: "alice@example.com", Name: "Alice", Role: auth.RoleUser}))

	resp, err = client.NewSpaceClient(admin).Create(ctx, map[string]any{
		"title":           "Rooftop loft",
		"price_per_hour":  100,
		"address":         "1 Main Street",
		"operating_start": "00-00",
		"operating_end":   "24-00",
	})
	expectStatus(t, "create space", resp, err, http.StatusCreated)
	var space model.Space
	if err := resp.DecodeData(&space); err != nil {
		t.Fatal(err)
	}

	day := time.Now().UTC().AddDate(1, 0, 0)
	start := time.Date(day.Year(), day.Month(), day.Day(), 10, 0, 0, 0, time.UTC)
	booking := map[string]any{
		"space_id": space.ID,
		"title":    "Team offsite",
		"start":    start,
		"end":      start.Add(150 * time.Minute),
	}

	reservations := client.NewReservationClient(alice)
	resp, err = reservations.Create(ctx, booking)
	expectStatus(t, "create reservation", resp, err, http.StatusCreated)
	var created model.Reservation
	if err := resp.DecodeData(&created); err != nil {
		t.Fatal(err)
	}
	if created.Total != 250 || created.Status != model.StatusPending || created.UserID != "alice" {
		t.Errorf("created = %+v", created)
	}

	resp, err = reservations.Create(ctx, booking)
	expectStatus(t, "double booking", resp, err, http.StatusConflict)
	var conflict struct {
		Details map[string]any `json:"details"`
	}
	if err := resp.DecodeJSON(&conflict); err != nil {
		t.Fatal(err)
	}
	if conflict.Details["conflicting_reservation_id"] != "1" {
		t.Errorf("details = %v", conflict.Details)
	}

	resp, err = reservations.Search(ctx, space.ID, "OFFSITE")
	expectStatus(t, "search", resp, err, http.StatusOK)
	var found []model.Reservation
	if err := resp.DecodeData(&found); err != nil || len(found) != 1 {
		t.Errorf("search found %d (%v)", len(found), err)
	}
	resp, err = reservations.Search(ctx, space.ID, "")
	expectStatus(t, "blank search", resp, err, http.StatusNoContent)

	resp, err = reservations.Pay(ctx, created.ID)
	expectStatus(t, "pay", resp, err, http.StatusOK)

	resp, err = client.NewSpaceClient(admin).Delete(ctx, space.ID)
	expectStatus(t, "delete booked space", resp, err, http.StatusConflict)

	resp, err = reservations.Cancel(ctx, created.ID)
	expectStatus(t, "cancel", resp, err, http.StatusNoContent)

	resp, err = client.NewSpaceClient(admin).Delete(ctx, space.ID)
	expectStatus(t, "delete space", resp, err, http.StatusNoContent)

	dispatcher.Wait()
	sent := gateway.messages()
	if len(sent) != 2 {
		t.Fatalf("sent = %+v, want invoice and cancellation", sent)
	}
	for i, kind := range []string{"invoice", "cancellation"} {
		if sent[i].kind != kind || sent[i].to != "alice@example.com" || sent[i].reservationID != created.ID {
			t.Errorf("sent[%d] = %+v", i, sent[i])
		}
	}
}

func TestInitLocker(t *testing.T) {
	cfg := testConfig()
	if _, ok := initLocker(cfg).(interface{ Len() int }); !ok {
		t.Error("local lock mode should use the in-process keyed locker")
	}
}

func TestInitGateway_DefaultsToLog(t *testing.T) {
	cfg := testConfig()
	gateway, closeGateway, err := initGateway(cfg)
	if err != nil {
		t.Fatalf("initGateway() error = %v", err)
	}
	if gateway == nil {
		t.Fatal("gateway is nil")
	}
	if err := closeGateway(); err != nil {
		t.Errorf("close: %v", err)
	}
}
