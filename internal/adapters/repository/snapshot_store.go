package repository

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/pkg/metrics"
)

const defaultMetricsUpdateInterval = 5 * time.Second

// SnapshotStore publishes snapshots through an atomic pointer. Writers are
// serialized and build the next snapshot fully before swapping it in, so a
// reader sees either the previous or the next snapshot, never a mix.
type SnapshotStore struct {
	writeMu  sync.Mutex
	snapshot atomic.Pointer[Snapshot]

	now                   func() time.Time
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSnapshotStore creates a store holding an empty snapshot and starts the
// background metrics updater, which stops with ctx or Close.
func NewSnapshotStore(ctx context.Context, opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:                   time.Now,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.snapshot.Store(&Snapshot{Version: uuid.New()})
	s.startMetricsUpdater(ctx)
	return s
}

// Current implements Store.
func (s *SnapshotStore) Current() *Snapshot {
	return s.snapshot.Load()
}

// ReplaceEvents implements Store. The slice is copied.
func (s *SnapshotStore) ReplaceEvents(events []model.ClockEvent) *Snapshot {
	owned := slices.Clone(events)
	return s.publish(func(prev *Snapshot) *Snapshot {
		return &Snapshot{
			Events:            owned,
			Users:             prev.Users,
			EventsRefreshedAt: s.now(),
			UsersRefreshedAt:  prev.UsersRefreshedAt,
		}
	})
}

// ReplaceUsers implements Store.
func (s *SnapshotStore) ReplaceUsers(users model.Directory) *Snapshot {
	return s.publish(func(prev *Snapshot) *Snapshot {
		return &Snapshot{
			Events:            prev.Events,
			Users:             users,
			EventsRefreshedAt: prev.EventsRefreshedAt,
			UsersRefreshedAt:  s.now(),
		}
	})
}

func (s *SnapshotStore) publish(build func(prev *Snapshot) *Snapshot) *Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := build(s.snapshot.Load())
	next.Version = uuid.New()
	s.snapshot.Store(next)

	metrics.RecordSnapshotPublished(s.now().Unix())
	metrics.UpdateSnapshotSize(len(next.Events), next.Users.Len())
	return next
}

// Close stops the background metrics updater.
func (s *SnapshotStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *SnapshotStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				snap := s.Current()
				metrics.UpdateSnapshotSize(len(snap.Events), snap.Users.Len())
			}
		}
	}()
}
