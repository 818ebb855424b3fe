// Package terminalsim serves generated users and punches over the terminal
// bridge protocol so the service can run without a device.
package terminalsim

import "time"

// Config holds simulator settings.
type Config struct {
	Addr      string         // Listen address
	Users     int            // Number of users to generate
	Seed      uint64         // Generator seed; equal seeds give equal data
	Location  *time.Location // Zone punches are generated in
	Latency   time.Duration  // Delay added to every response
	FailEvery int            // Every Nth request fails with 503; 0 never fails
	Verbose   bool           // Log every request
}

// User is one directory entry as the bridge reports it.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Punch is one clock event as the bridge reports it.
type Punch struct {
	UserID    string `json:"user_id"`
	Timestamp string `json:"timestamp"`
}

// Dataset is everything the simulated terminal holds.
type Dataset struct {
	Users   []User
	Punches []Punch
}
