// Package repository holds the process-wide clock-event snapshot.
package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/punchclock/internal/domain/model"
)

// Snapshot is an immutable pair of retained events and user directory.
// Readers hold on to one Snapshot for the duration of a request; refreshes
// publish a new one instead of mutating it.
type Snapshot struct {
	Version           uuid.UUID
	Events            []model.ClockEvent
	Users             model.Directory
	EventsRefreshedAt time.Time
	UsersRefreshedAt  time.Time
}

// Store provides lock-free reads of the current snapshot and wholesale
// replacement of either half.
type Store interface {
	// Current returns the latest published snapshot. Never nil.
	Current() *Snapshot

	// ReplaceEvents publishes a snapshot carrying events and the current users.
	ReplaceEvents(events []model.ClockEvent) *Snapshot

	// ReplaceUsers publishes a snapshot carrying users and the current events.
	ReplaceUsers(users model.Directory) *Snapshot
}
