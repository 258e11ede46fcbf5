package simulator

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"netmonlabs/netmon/internal/api"
	"netmonlabs/netmon/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// --- Test helpers ---

func newTestServer(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	s := New(Config{BcryptCost: bcrypt.MinCost, Batch: 3})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, api.NewClient(srv.URL)
}

func registerReq(name string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Username: name,
		FullName: "Ops Team",
		Email:    name + "@example.com",
		Password: "s3cret",
	}
}

func strPtr(s string) *string { return &s }

func TestRegisterThenLogin(t *testing.T) {
	s, c := newTestServer(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, registerReq("ops")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp, err := c.Login(ctx, domain.LoginRequest{Username: "ops", Password: "s3cret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := s.auth.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "ops" || claims.Role != DefaultRole {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("expected a token ID")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != TokenTTL {
		t.Errorf("token TTL = %v, want %v", ttl, TokenTTL)
	}
}

func TestRegister_DuplicateIs400WithText(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, registerReq("ops")); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := c.Register(ctx, registerReq("ops"))

	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *api.RequestError, got %T (%v)", err, err)
	}
	if reqErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", reqErr.StatusCode)
	}
	if domain.UserMessage(err) != "User already exists" {
		t.Errorf("message = %q", domain.UserMessage(err))
	}
}

func TestRegister_MissingProfileFields(t *testing.T) {
	_, c := newTestServer(t)
	req := registerReq("ops")
	req.Email = ""

	_, err := c.Register(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "Email is required") {
		t.Errorf("expected email error, got %v", err)
	}
}

func TestLogin_BadCredentialsIs401(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()
	c.Register(ctx, registerReq("ops"))

	for _, req := range []domain.LoginRequest{
		{Username: "ops", Password: "wrong"},
		{Username: "ghost", Password: "s3cret"},
	} {
		_, err := c.Login(ctx, req)
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Errorf("%s: expected ErrUnauthorized, got %v", req.Username, err)
		}
		if domain.UserMessage(err) != "Invalid credentials" {
			t.Errorf("%s: message = %q", req.Username, domain.UserMessage(err))
		}
	}
}

func TestTelemetry_NewestFirstWithAnomalyFlag(t *testing.T) {
	s, c := newTestServer(t)

	base := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
	s.store.now = func() time.Time { return base }
	s.store.Ingest([]Event{{DeviceName: "Router-01", IPAddress: "10.0.0.1", MetricValue: 90, Location: strPtr("Omsk, Node-7")}})
	s.store.now = func() time.Time { return base.Add(20 * time.Second) }
	s.store.Ingest([]Event{{DeviceName: "Switch-02", IPAddress: "10.0.0.2", MetricValue: 89.9}})

	records, err := c.Telemetry(context.Background())
	if err != nil {
		t.Fatalf("Telemetry: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].DeviceName != "Switch-02" || records[1].DeviceName != "Router-01" {
		t.Errorf("expected newest first, got %s then %s", records[0].DeviceName, records[1].DeviceName)
	}
	if records[0].IsAnomaly || !records[1].IsAnomaly {
		t.Errorf("anomaly flags = %v, %v; want false, true", records[0].IsAnomaly, records[1].IsAnomaly)
	}
	if records[1].RecordedAt.Raw != "2025-11-20T12:00:00" {
		t.Errorf("recorded_at = %q, want naive timestamp", records[1].RecordedAt.Raw)
	}
	if key, _ := records[1].RecordedAt.ClockKey(); key != "12:00:00" {
		t.Errorf("clock key = %q", key)
	}
	if records[0].Location != nil {
		t.Errorf("expected null location, got %q", *records[0].Location)
	}
}

func TestIngestEndpoint(t *testing.T) {
	s, c := newTestServer(t)

	body := []Event{{DeviceName: "Firewall-03", IPAddress: "172.16.0.1", MetricTypeID: 1, MetricValue: 42}}
	if err := c.Post(context.Background(), api.PathTelemetry, body, nil); err != nil {
		t.Fatalf("POST telemetry: %v", err)
	}
	if got := s.store.Telemetry(); len(got) != 1 || got[0].DeviceName != "Firewall-03" {
		t.Errorf("store = %+v", got)
	}
}

func TestInvalidJSONIs400(t *testing.T) {
	s := New(Config{BcryptCost: bcrypt.MinCost})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+api.PathLogin, "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStore_CapsRecords(t *testing.T) {
	store := NewStore(3)
	gen := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	store.Ingest(gen.Batch(5))
	if got := len(store.Telemetry()); got != 3 {
		t.Errorf("kept %d records, want 3", got)
	}
}

func TestGenerator_UsesPools(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewPCG(7, 7)))
	for _, ev := range gen.Batch(200) {
		if !slices.Contains(devices, ev.DeviceName) {
			t.Fatalf("unknown device %q", ev.DeviceName)
		}
		if !slices.Contains(addresses, ev.IPAddress) {
			t.Fatalf("unknown address %q", ev.IPAddress)
		}
		if ev.Location == nil || !slices.Contains(locations, *ev.Location) {
			t.Fatalf("unknown location %v", ev.Location)
		}
		if ev.ActionDescription == nil || !slices.Contains(actions, *ev.ActionDescription) {
			t.Fatalf("unknown action %v", ev.ActionDescription)
		}
		if ev.MetricTypeID < 1 || ev.MetricTypeID > len(metricTypes) {
			t.Fatalf("metric type %d out of range", ev.MetricTypeID)
		}
		if ev.MetricValue < 0 || ev.MetricValue >= 100 {
			t.Fatalf("value %v out of [0,100)", ev.MetricValue)
		}
	}
}

func TestGenerator_WithRange(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewPCG(3, 4))).WithRange(85, 95)
	for _, ev := range gen.Batch(100) {
		if ev.MetricValue < 85 || ev.MetricValue >= 95 {
			t.Fatalf("value %v out of [85,95)", ev.MetricValue)
		}
	}

	inverted := NewGenerator(rand.New(rand.NewPCG(3, 4))).WithRange(50, 10)
	if inverted.minValue != DefaultMinValue || inverted.maxValue != DefaultMaxValue {
		t.Errorf("inverted range should be ignored, got [%v,%v)", inverted.minValue, inverted.maxValue)
	}
}

func TestVerify_RejectsForeignToken(t *testing.T) {
	store := NewStore(0)
	a := NewAuthenticator(store, "one", bcrypt.MinCost)
	b := NewAuthenticator(store, "two", bcrypt.MinCost)

	token, err := a.Register(registerReq("ops"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("expected signature check to fail")
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	a := NewAuthenticator(NewStore(0), "k", bcrypt.MinCost)
	issued := time.Now().Add(-48 * time.Hour)
	a.now = func() time.Time { return issued }
	token, err := a.Register(registerReq("ops"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	a.now = time.Now
	if _, err := a.Verify(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestServe_GeneratesAndShutsDown(t *testing.T) {
	s := New(Config{BcryptCost: bcrypt.MinCost, Interval: 10 * time.Millisecond, Batch: 2})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	c := api.NewClient("http://" + ln.Addr().String())
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := c.Telemetry(context.Background())
		if err == nil && len(records) >= 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("simulator did not generate telemetry (last err %v)", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
