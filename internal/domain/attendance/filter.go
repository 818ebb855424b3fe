// Package attendance derives day buckets, period totals and single-user
// pairings from raw clock events. Every function is pure: inputs are never
// mutated and results share no memory with them.
package attendance

import (
	"time"

	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
)

// FilterByMonth returns the events that fall in m, in input order.
func FilterByMonth(events []model.ClockEvent, m period.Month) []model.ClockEvent {
	out := make([]model.ClockEvent, 0, len(events))
	for _, e := range events {
		if m.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

// Retain keeps the events of the month containing now and the month before
// it. Older and future events are dropped.
func Retain(events []model.ClockEvent, now time.Time) []model.ClockEvent {
	current := period.MonthOf(now)
	previous := current.Previous()

	out := make([]model.ClockEvent, 0, len(events))
	for _, e := range events {
		if current.Contains(e.Timestamp) || previous.Contains(e.Timestamp) {
			out = append(out, e)
		}
	}
	return out
}

// ForPeriod applies the month filter selected by p, or returns a copy of
// events when p has no month.
func ForPeriod(events []model.ClockEvent, p period.Period, now time.Time) []model.ClockEvent {
	if m, ok := p.Resolve(now); ok {
		return FilterByMonth(events, m)
	}
	out := make([]model.ClockEvent, len(events))
	copy(out, events)
	return out
}
