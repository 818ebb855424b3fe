// Package service wires the snapshot store, refresh workers and report
// rendering behind the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/punchclock/internal/adapters/mq/queue"
	"github.com/okian/punchclock/internal/adapters/mq/worker"
	"github.com/okian/punchclock/internal/adapters/report"
	"github.com/okian/punchclock/internal/adapters/repository"
	"github.com/okian/punchclock/internal/adapters/terminal"
	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

const (
	defaultWorkerCount = 2
	defaultQueueSize   = 16
	defaultCacheTTL    = 5 * time.Minute
)

// Service implements the attendance operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	gateway  terminal.Gateway
	store    repository.Store
	queue    queue.Queue
	pool     *worker.Pool
	renderer report.Renderer
	cache    *report.Cache

	// Configuration
	workerCount int
	queueSize   int
	cacheTTL    time.Duration
	now         func() time.Time
	loc         *time.Location

	// State
	started    bool
	ownsStore  bool
	cancelPool context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Start must be called before refreshing.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		cacheTTL:    defaultCacheTTL,
		now:         time.Now,
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the store (unless one was given), the refresh queue and the
// worker pool. Workers run until Stop; they do not inherit ctx cancellation,
// so a refresh outlives the request that asked for it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.gateway == nil {
		return ErrNoGateway
	}

	s.logger.Info(ctx, "starting attendance service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if s.store == nil {
		s.store = repository.NewSnapshotStore(runCtx, repository.WithClock(s.clock))
		s.ownsStore = true
	}
	if s.renderer == nil {
		s.renderer = report.NewPDFRenderer()
	}
	s.cache = report.NewCache(s.cacheTTL)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	proc := &refresher{
		gateway: s.gateway,
		store:   s.store,
		now:     s.clock,
		logger:  s.logger.Named("refresh"),
	}
	s.pool = worker.NewPool(s.workerCount, s.queue, proc)
	s.pool.Start(runCtx)
	s.cancelPool = cancel

	s.started = true
	s.logger.Info(ctx, "attendance service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("timezone", s.loc.String()),
	)
	return nil
}

// Stop shuts down workers, the report cache and an owned store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping attendance service...")

	s.pool.Stop(ctx)
	s.cancelPool()
	s.cache.Stop()

	if s.ownsStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	s.started = false
	s.logger.Info(ctx, "attendance service stopped")
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// snapshot returns the current snapshot, or an empty one before Start.
func (s *Service) snapshot() *repository.Snapshot {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return &repository.Snapshot{}
	}
	return store.Current()
}

func (s *Service) parsePeriod(ctx context.Context, token string) period.Period {
	p, ok := period.Parse(token)
	if !ok {
		metrics.RecordInvalidPeriod()
		s.log().Debug(ctx, "unrecognized period, using all events", logger.String("period", token))
	}
	return p
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Get().Named("service")
}

// ReportFile is a rendered attendance report.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
	Cached      bool
}

// Report renders the attendance table for the period and users. An empty
// user list means every known user; an unknown period means all events.
func (s *Service) Report(ctx context.Context, token string, userIDs []string) (ReportFile, error) {
	s.mu.RLock()
	renderer, cache := s.renderer, s.cache
	s.mu.RUnlock()
	if renderer == nil || cache == nil {
		return ReportFile{}, ErrNotStarted
	}

	snap := s.snapshot()
	now := s.clock()
	p := s.parsePeriod(ctx, token)
	month, _ := p.Resolve(now)
	sel := attendance.SelectUsers(userIDs)

	file := ReportFile{
		// The resolved token, not request text, goes into the header.
		Filename:    "attendance_report_" + p.String() + ".pdf",
		ContentType: renderer.ContentType(),
	}

	key := report.Key{Version: snap.Version, Period: p, Month: monthKey(p, month), Users: sel.UserIDs}
	if body, ok := cache.Get(key); ok {
		file.Body, file.Cached = body, true
		return file, nil
	}

	table := attendance.BuildTable(attendance.ForPeriod(snap.Events, p, now), sel, snap.Users)
	body, err := renderer.Render(ctx, report.Document{
		Title:       period.Title(p.String()),
		GeneratedAt: now,
		Table:       table,
		Totals:      table.Totals(),
		Users:       snap.Users,
	})
	if err != nil {
		return ReportFile{}, fmt.Errorf("report %s: %w", p, err)
	}
	cache.Set(key, body)
	file.Body = body
	return file, nil
}

// Attendance returns the same table a report shows, as data.
func (s *Service) Attendance(ctx context.Context, token string, userIDs []string) AttendanceView {
	snap := s.snapshot()
	now := s.clock()
	p := s.parsePeriod(ctx, token)
	month, _ := p.Resolve(now)

	table := attendance.BuildTable(attendance.ForPeriod(snap.Events, p, now), attendance.SelectUsers(userIDs), snap.Users)
	return newAttendanceView(p, monthKey(p, month), table, snap.Users)
}

// UserSummary returns the chronological pairing view of one user for the
// current month, or last month when token is "last-month".
func (s *Service) UserSummary(ctx context.Context, userID, token string) model.UserSummary {
	snap := s.snapshot()
	month, _ := period.ParseSummary(token).Resolve(s.clock())
	return attendance.Summarize(snap.Events, userID, month, snap.Users)
}

// Users returns the current user directory.
func (s *Service) Users(_ context.Context) model.Directory {
	return s.snapshot().Users
}

// RefreshUsers replaces the user directory from the terminal.
func (s *Service) RefreshUsers(ctx context.Context) (model.Directory, error) {
	res, err := s.refresh(ctx, model.RefreshUsers)
	if err != nil {
		return model.Directory{}, err
	}
	return res.Users, nil
}

// RefreshEvents replaces the retained events from the terminal.
func (s *Service) RefreshEvents(ctx context.Context) (model.RefreshResult, error) {
	return s.refresh(ctx, model.RefreshEvents)
}

// refresh hands a job to the workers and waits for its result or ctx. A
// caller that gives up does not cancel the job.
func (s *Service) refresh(ctx context.Context, kind model.RefreshKind) (model.RefreshResult, error) {
	s.mu.RLock()
	started, q := s.started, s.queue
	s.mu.RUnlock()
	if !started {
		return model.RefreshResult{}, ErrNotStarted
	}

	job := model.NewRefreshJob(kind, s.clock())
	if err := q.Enqueue(ctx, job); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			metrics.RecordRefreshRejected("queue_full")
		}
		return model.RefreshResult{}, fmt.Errorf("refresh %s: %w", kind, err)
	}

	select {
	case res := <-job.Result:
		if res.Err != nil {
			return res, fmt.Errorf("refresh %s: %w", kind, res.Err)
		}
		return res, nil
	case <-ctx.Done():
		s.log().Warn(ctx, "caller stopped waiting for refresh",
			logger.String("job", job.ID.String()),
			logger.String("kind", string(kind)),
		)
		return model.RefreshResult{}, fmt.Errorf("refresh %s: %w", kind, ctx.Err())
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"timezone":    s.loc.String(),
	}

	if s.started {
		snap := s.store.Current()
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["events"] = len(snap.Events)
		stats["users"] = snap.Users.Len()
		stats["snapshotVersion"] = snap.Version.String()
		stats["cachedReports"] = s.cache.Len()
		if !snap.EventsRefreshedAt.IsZero() {
			stats["eventsRefreshedAt"] = snap.EventsRefreshedAt.Format(time.RFC3339)
		}
		if !snap.UsersRefreshedAt.IsZero() {
			stats["usersRefreshedAt"] = snap.UsersRefreshedAt.Format(time.RFC3339)
		}
	}
	return stats
}

func monthKey(p period.Period, m period.Month) string {
	if p == period.All {
		return ""
	}
	return m.String()
}
