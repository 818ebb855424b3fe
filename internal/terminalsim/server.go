package terminalsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/punchclock/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server answers bridge requests from a fixed dataset.
type Server struct {
	cfg      Config
	data     Dataset
	requests atomic.Int64
	logger   logger.Logger
}

// NewServer creates a simulator serving data.
func NewServer(cfg Config, data Dataset) *Server {
	return &Server{cfg: cfg, data: data, logger: logger.Get().Named("terminal-sim")}
}

// Handler returns the bridge routes: GET /users and GET /attendance.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/users", s.serve(func() any { return s.data.Users })).Methods(http.MethodGet)
	r.HandleFunc("/attendance", s.serve(func() any { return s.data.Punches })).Methods(http.MethodGet)
	return r
}

// serve applies latency and failure injection around a JSON response.
func (s *Server) serve(body func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.requests.Add(1)
		if s.cfg.Verbose {
			s.logger.Info(r.Context(), "bridge request", logger.String("path", r.URL.Path), logger.Int("n", int(n)))
		}

		if s.cfg.Latency > 0 {
			select {
			case <-time.After(s.cfg.Latency):
			case <-r.Context().Done():
				return
			}
		}
		if s.cfg.FailEvery > 0 && n%int64(s.cfg.FailEvery) == 0 {
			http.Error(w, "device busy", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body()); err != nil {
			s.logger.Warn(r.Context(), "write failed", logger.Error(err))
		}
	}
}

// Run listens on cfg.Addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "terminal simulator listening",
			logger.String("addr", s.cfg.Addr),
			logger.Int("users", len(s.data.Users)),
			logger.Int("punches", len(s.data.Punches)),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
