package model

import "time"

// DayBucket holds the earliest and latest punch of one user on one day.
// Both fields are nil for a date with no punches for that user.
type DayBucket struct {
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
}

// Empty reports whether the bucket saw no events.
func (b DayBucket) Empty() bool {
	return b.CheckIn == nil || b.CheckOut == nil
}

// Observe widens the bucket so that it covers ts.
func (b *DayBucket) Observe(ts time.Time) {
	if b.CheckIn == nil || ts.Before(*b.CheckIn) {
		in := ts
		b.CheckIn = &in
	}
	if b.CheckOut == nil || ts.After(*b.CheckOut) {
		out := ts
		b.CheckOut = &out
	}
}

// Minutes returns the whole minutes between check-in and check-out,
// truncated toward zero. Empty buckets contribute nothing.
func (b DayBucket) Minutes() int {
	if b.Empty() {
		return 0
	}
	return int(b.CheckOut.Sub(*b.CheckIn) / time.Minute)
}

// Record is one row of a single-user summary.
type Record struct {
	Date     string `json:"date"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// UserSummary is the single-user, single-month attendance view.
type UserSummary struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	TotalMinutes int      `json:"total_minutes"`
	Records      []Record `json:"records"`
}
