// Package model contains the attendance domain types shared between layers.
package model

import "time"

// DateLayout is the calendar-date key format used for day buckets.
const DateLayout = "2006-01-02"

// ClockEvent is one raw terminal punch. The terminal reports no direction,
// so whether a punch is a check-in or a check-out is derived later.
type ClockEvent struct {
	UserID    string    `json:"user_id" koanf:"user_id"`
	Timestamp time.Time `json:"timestamp" koanf:"timestamp"`
}

// DateKey returns the calendar date of the event in the timestamp's location.
func (e ClockEvent) DateKey() string {
	return e.Timestamp.Format(DateLayout)
}
