package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/okian/punchclock/internal/adapters/http/api"
	"github.com/okian/punchclock/internal/adapters/http/site"
	"github.com/okian/punchclock/internal/adapters/http/swagger"
	"github.com/okian/punchclock/internal/adapters/terminal"
	app "github.com/okian/punchclock/internal/app"
	"github.com/okian/punchclock/internal/config"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	writeTimeoutMargin        = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "punchclock exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.LogFormat == string(logger.FormatJSON) {
		if err := logger.InitWithOptions(os.Stdout, logger.FormatJSON); err != nil {
			return fmt.Errorf("init json logging: %w", err)
		}
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	gateway, err := buildGateway(cfg, loc, log)
	if err != nil {
		return err
	}

	svc := app.New(
		app.WithGateway(gateway),
		app.WithLocation(loc),
		app.WithLogger(log.Named("service")),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithReportCacheTTL(cfg.ReportCacheTTL),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	limiter, stopLimiter := api.NewTokenBucketRateLimiter(cfg.RefreshRatePerMinute, cfg.RefreshBurst)
	defer stopLimiter()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, svc, api.NewRequestBasedRateLimiter(limiter, api.IPKeyFunc), cfg.CORSOrigins, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.TerminalEventsTimeout + writeTimeoutMargin,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Load whatever the terminal has before serving; a failure only logs,
	// the service runs on an empty snapshot until the next refresh.
	go warmUp(ctx, svc, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
	}
}

// buildGateway selects the terminal implementation named by the config.
func buildGateway(cfg *config.Config, loc *time.Location, log logger.Logger) (terminal.Gateway, error) {
	switch cfg.TerminalKind {
	case config.TerminalFile:
		return terminal.NewFileGateway(cfg.TerminalFixture, loc), nil
	case config.TerminalBridge:
		gw, err := terminal.NewBridgeGateway(cfg.TerminalURL,
			terminal.WithTimeouts(cfg.TerminalUsersTimeout, cfg.TerminalEventsTimeout),
			terminal.WithLocation(loc),
			terminal.WithLogger(log.Named("terminal")),
		)
		if err != nil {
			return nil, fmt.Errorf("terminal bridge: %w", err)
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("%w: terminal_kind %q", config.ErrInvalidConfig, cfg.TerminalKind)
	}
}

// newHandler assembles the router. The console claims every unmatched path,
// so it is registered last.
func newHandler(ctx context.Context, svc *app.Service, limiter api.RequestRateLimiter, origins []string, log logger.Logger) http.Handler {
	r := mux.NewRouter()
	api.NewServer(svc, svc, limiter).Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return api.Wrap(r, origins, log.Named("http"))
}

func warmUp(ctx context.Context, svc *app.Service, log logger.Logger) {
	if _, err := svc.RefreshUsers(ctx); err != nil {
		log.Warn(ctx, "initial user refresh failed", logger.Error(err))
	}
	if _, err := svc.RefreshEvents(ctx); err != nil {
		log.Warn(ctx, "initial attendance refresh failed", logger.Error(err))
	}
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
