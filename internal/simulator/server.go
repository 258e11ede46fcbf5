// Package simulator is a stand-in for the monitoring backend. It serves
// /register, /login and /operator/telemetry from memory and feeds itself
// random device readings on a fixed interval.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"netmonlabs/netmon/internal/api"
	"netmonlabs/netmon/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// Defaults for Config.
const (
	DefaultAddr     = ":8080"
	DefaultInterval = 20 * time.Second
	DefaultBatch    = 5
	DefaultSecret   = "netmon-simulator-secret"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Config configures a Server.
type Config struct {
	Addr       string
	Interval   time.Duration
	Batch      int
	Secret     string
	BcryptCost int
	MaxRecords int
	// MinValue and MaxValue bound generated metric values. A zero or
	// inverted range uses the generator defaults.
	MinValue float64
	MaxValue float64
	Logger   *slog.Logger
}

// Server is the simulated backend.
type Server struct {
	cfg    Config
	store  *Store
	auth   *Authenticator
	gen    *Generator
	logger *slog.Logger
}

// New creates a Server, filling unset Config fields with defaults.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultBatch
	}
	if cfg.Secret == "" {
		cfg.Secret = DefaultSecret
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	store := NewStore(cfg.MaxRecords)
	return &Server{
		cfg:    cfg,
		store:  store,
		auth:   NewAuthenticator(store, cfg.Secret, cfg.BcryptCost),
		gen:    NewGenerator(nil).WithRange(cfg.MinValue, cfg.MaxValue),
		logger: cfg.Logger,
	}
}

// Store exposes the backing store.
func (s *Server) Store() *Store { return s.store }

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Post(api.PathRegister, s.handleRegister)
	r.Post(api.PathLogin, s.handleLogin)
	r.Get(api.PathTelemetry, s.handleGetTelemetry)
	r.Post(api.PathTelemetry, s.handleIngest)

	return r
}

// Generate ingests one batch of random events.
func (s *Server) Generate() int {
	n := s.store.Ingest(s.gen.Batch(s.cfg.Batch))
	s.logger.Debug("generated telemetry", "events", n)
	return n
}

// Run serves on cfg.Addr and generates a batch every cfg.Interval until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("simulator: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("simulator listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.Generate()
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s.Generate()
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := s.auth.Register(req)
	if err != nil {
		s.logger.Info("registration rejected", "username", req.Username, "reason", err)
		http.Error(w, capitalize(err.Error()), http.StatusBadRequest)
		return
	}
	s.logger.Info("user registered", "username", req.Username)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	token, err := s.auth.Login(req)
	if err != nil {
		s.logger.Info("login rejected", "username", req.Username)
		http.Error(w, capitalize(err.Error()), http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (s *Server) handleGetTelemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Telemetry())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var events []Event
	if !decode(w, r, &events) {
		return
	}
	n := s.store.Ingest(events)
	s.logger.Debug("ingested telemetry", "events", n)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Telemetry processed")
}

// requestLogger logs each request. A bearer token, when present and valid,
// adds the caller to the log line; it is never required.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		}
		if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
			if claims, err := s.auth.Verify(bearer); err == nil {
				attrs = append(attrs, "user", claims.Subject)
			}
		}
		s.logger.Info("request", attrs...)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
