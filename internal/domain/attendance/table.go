package attendance

import (
	"slices"

	"github.com/okian/punchclock/internal/domain/model"
)

// Selection is the candidate user set of a table. When Explicit is false the
// table covers every user of the directory passed to BuildTable.
type Selection struct {
	UserIDs  []string
	Explicit bool
}

// SelectUsers builds an explicit selection from ids, dropping blanks and
// duplicates while keeping first-seen order. An empty result means "all".
func SelectUsers(ids []string) Selection {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return Selection{}
	}
	return Selection{UserIDs: out, Explicit: true}
}

// Table is the per-user, per-date check-in/check-out reconstruction.
type Table struct {
	// UserIDs lists the candidate users in output order.
	UserIDs []string
	// Dates lists the calendar dates covered, ascending.
	Dates []string
	// Days maps user id to date to bucket. Every (user, date) pair exists.
	Days map[string]map[string]model.DayBucket
}

// BuildTable buckets events by user and calendar date. Each bucket keeps the
// earliest punch as check-in and the latest as check-out; the terminal has no
// direction flag, so every punch is a candidate for both roles.
//
// Dates are the distinct dates of the candidates' events, not a generated
// calendar. Users without events still get a row of empty buckets. Events of
// users outside the candidate set are ignored and add no dates.
func BuildTable(events []model.ClockEvent, sel Selection, dir model.Directory) Table {
	users := sel.UserIDs
	if !sel.Explicit {
		users = dir.IDs()
	}
	users = slices.Clone(users)

	candidates := make(map[string]struct{}, len(users))
	for _, id := range users {
		candidates[id] = struct{}{}
	}

	scoped := make([]model.ClockEvent, 0, len(events))
	for _, e := range events {
		if _, ok := candidates[e.UserID]; ok {
			scoped = append(scoped, e)
		}
	}

	dateSet := make(map[string]struct{})
	for _, e := range scoped {
		dateSet[e.DateKey()] = struct{}{}
	}
	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	days := make(map[string]map[string]model.DayBucket, len(users))
	for _, id := range users {
		row := make(map[string]model.DayBucket, len(dates))
		for _, d := range dates {
			row[d] = model.DayBucket{}
		}
		days[id] = row
	}

	for _, e := range scoped {
		row := days[e.UserID]
		key := e.DateKey()
		b := row[key]
		b.Observe(e.Timestamp)
		row[key] = b
	}

	return Table{UserIDs: users, Dates: dates, Days: days}
}

// Totals returns the minutes present per candidate user: the sum over the
// user's buckets of check-out minus check-in, each truncated to whole
// minutes. Users without events map to zero.
func (t Table) Totals() map[string]int {
	totals := make(map[string]int, len(t.UserIDs))
	for _, id := range t.UserIDs {
		sum := 0
		for _, b := range t.Days[id] {
			sum += b.Minutes()
		}
		totals[id] = sum
	}
	return totals
}

// Bucket returns the bucket for user and date, empty when absent.
func (t Table) Bucket(userID, date string) model.DayBucket {
	return t.Days[userID][date]
}
