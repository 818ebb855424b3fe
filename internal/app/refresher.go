package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/punchclock/internal/adapters/mq/worker"
	"github.com/okian/punchclock/internal/adapters/repository"
	"github.com/okian/punchclock/internal/adapters/terminal"
	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/logger"
	"github.com/okian/punchclock/pkg/metrics"
)

// refresher performs the terminal round trip for a refresh job and publishes
// the result. A failed fetch publishes nothing. Fetch and publish of one kind
// run under that kind's lock, so publishes land in fetch order and an older
// fetch never overwrites a newer one.
type refresher struct {
	gateway terminal.Gateway
	store   repository.Store
	now     func() time.Time
	logger  logger.Logger

	usersMu  sync.Mutex
	eventsMu sync.Mutex
}

var _ worker.Processor = (*refresher)(nil)

func (r *refresher) Process(ctx context.Context, job worker.Job) model.RefreshResult {
	start := time.Now()
	var res model.RefreshResult

	switch job.Kind {
	case model.RefreshUsers:
		res = r.refreshUsers(ctx)

	case model.RefreshEvents:
		res = r.refreshEvents(ctx)

	default:
		res.Err = fmt.Errorf("unknown refresh kind %q", job.Kind)
	}

	metrics.RecordRefresh(string(job.Kind), float64(time.Since(start).Milliseconds()), res.Err != nil)
	if res.Err == nil {
		r.logger.Info(ctx, "snapshot refreshed",
			logger.String("kind", string(job.Kind)),
			logger.Int("fetched", res.Fetched),
			logger.Int("dropped", res.Dropped),
		)
	}
	return res
}

func (r *refresher) refreshUsers(ctx context.Context) model.RefreshResult {
	r.usersMu.Lock()
	defer r.usersMu.Unlock()

	users, err := r.gateway.FetchUsers(ctx)
	if err != nil {
		return model.RefreshResult{Err: err}
	}
	r.store.ReplaceUsers(users)
	return model.RefreshResult{Users: users, Fetched: users.Len()}
}

func (r *refresher) refreshEvents(ctx context.Context) model.RefreshResult {
	r.eventsMu.Lock()
	defer r.eventsMu.Unlock()

	events, err := r.gateway.FetchEvents(ctx)
	if err != nil {
		return model.RefreshResult{Err: err}
	}
	kept := attendance.Retain(events, r.now())
	r.store.ReplaceEvents(kept)
	res := model.RefreshResult{
		Events:  kept,
		Fetched: len(events),
		Dropped: len(events) - len(kept),
	}
	metrics.RecordRetentionDropped(res.Dropped)
	return res
}
