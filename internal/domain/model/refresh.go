package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshKind selects which half of the snapshot a refresh replaces.
type RefreshKind string

const (
	RefreshUsers  RefreshKind = "users"
	RefreshEvents RefreshKind = "events"
)

// RefreshJob asks a worker to fetch from the terminal and publish the result.
// Result is buffered so the worker never blocks on a caller that gave up.
type RefreshJob struct {
	ID         uuid.UUID
	Kind       RefreshKind
	EnqueuedAt time.Time
	Result     chan RefreshResult
}

// NewRefreshJob creates a job with a fresh id and a one-slot result channel.
func NewRefreshJob(kind RefreshKind, now time.Time) RefreshJob {
	return RefreshJob{
		ID:         uuid.New(),
		Kind:       kind,
		EnqueuedAt: now,
		Result:     make(chan RefreshResult, 1),
	}
}

// RefreshResult reports the outcome of a RefreshJob.
type RefreshResult struct {
	JobID    uuid.UUID
	Kind     RefreshKind
	Users    Directory
	Events   []ClockEvent
	Fetched  int
	Dropped  int
	Duration time.Duration
	Err      error
}
