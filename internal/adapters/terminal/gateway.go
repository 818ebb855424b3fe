// Package terminal fetches users and punches from the time terminal.
//
// The device protocol itself lives outside this service; gateways here talk
// to a bridge that exposes the terminal over HTTP, or read a fixture file.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/punchclock/internal/domain/model"
)

// ErrDeviceUnavailable covers connect, timeout and protocol failures.
var ErrDeviceUnavailable = errors.New("terminal unavailable")

// Gateway is the terminal round trip used by refreshes.
type Gateway interface {
	FetchUsers(ctx context.Context) (model.Directory, error)
	FetchEvents(ctx context.Context) ([]model.ClockEvent, error)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDeviceUnavailable, err)
}

// timestampLayouts are tried in order. Layouts without a zone are read in
// the terminal's configured location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp parses a terminal timestamp, reading zoneless values in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// userRecord and punchRecord are the bridge wire shapes.
type userRecord struct {
	UserID string `json:"user_id" koanf:"user_id"`
	Name   string `json:"name" koanf:"name"`
}

type punchRecord struct {
	UserID    string `json:"user_id" koanf:"user_id"`
	Timestamp string `json:"timestamp" koanf:"timestamp"`
}

func toDirectory(users []userRecord) model.Directory {
	names := make(map[string]string, len(users))
	for _, u := range users {
		if u.UserID == "" {
			continue
		}
		names[u.UserID] = u.Name
	}
	return model.NewDirectory(names)
}

func toEvents(punches []punchRecord, loc *time.Location) ([]model.ClockEvent, error) {
	events := make([]model.ClockEvent, 0, len(punches))
	for i, p := range punches {
		ts, err := ParseTimestamp(p.Timestamp, loc)
		if err != nil {
			return nil, fmt.Errorf("punch %d: %w", i, err)
		}
		events = append(events, model.ClockEvent{UserID: p.UserID, Timestamp: ts})
	}
	return events, nil
}
