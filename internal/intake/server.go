package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"greenroom/internal/config"
	"greenroom/internal/content"
	"greenroom/internal/ingest"
	"greenroom/internal/logging"
	"greenroom/internal/review"
)

// Server is the HTTP intake service.
type Server struct {
	cfg      *config.Config
	store    *content.Store
	ingestor *ingest.Ingestor
	reviewer *review.Reviewer
	logger   *slog.Logger

	lockPath string
	lock     *flock.Flock

	running  atomic.Bool
	listener net.Listener
	server   *http.Server
}

// New builds an intake server over the given collaborators.
func New(cfg *config.Config, store *content.Store, ingestor *ingest.Ingestor, reviewer *review.Reviewer, logger *slog.Logger) *Server {
	lockPath := filepath.Join(cfg.Paths.DataDir, "greenroom.lock")
	srv := &Server{
		cfg:      cfg,
		store:    store,
		ingestor: ingestor,
		reviewer: reviewer,
		logger:   logging.NewComponentLogger(logger, "intake"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler returns the routed HTTP handler, usable directly in tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/submissions", s.authorized(s.handleSubmissions))
	mux.HandleFunc("/api/records", s.authorized(s.handleRecords))
	mux.HandleFunc("/api/records/", s.authorized(s.handleRecord))
	mux.HandleFunc("/api/status", s.authorized(s.handleStatus))
	// Confirmation links are speaker-facing; the confirmation id is
	// the credential.
	mux.HandleFunc("/api/confirmations/", s.handleConfirmation)
	return mux
}

// Start acquires the instance lock and begins serving. The server
// shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("intake server already running")
	}

	ok, err := s.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another greenroom instance is already running")
	}

	bind := strings.TrimSpace(s.cfg.Paths.APIBind)
	if bind == "" {
		bind = "127.0.0.1:7474"
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		_ = s.lock.Unlock()
		return fmt.Errorf("intake listen: %w", err)
	}
	s.listener = listener
	s.running.Store(true)

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("intake server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("intake server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
	)
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and releases the instance lock.
func (s *Server) Stop() {
	if !s.running.Load() {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release instance lock", logging.Error(err))
	}
	s.running.Store(false)
	s.logger.Info("intake server stopped")
}

// authorized enforces the configured bearer token, when one is set.
func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(s.cfg.Paths.APIToken)
		if token != "" {
			header := r.Header.Get("Authorization")
			if header != "Bearer "+token {
				s.writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
