package attendance

import (
	"slices"
	"time"

	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
)

// RecordLayout is the display format of single-user summary times.
const RecordLayout = "2006-01-02 03:04PM"

// Summarize builds the single-user view for one month. Punches are truncated
// to the minute, sorted, and paired consecutively: punch i is a check-in and
// punch i+1 its check-out. The last seen check-out advances after every pair,
// and a pair whose check-in equals it is skipped. The first pair has no prior
// check-out and is always counted.
//
// Records list every punch once with the same time in both fields.
func Summarize(events []model.ClockEvent, userID string, m period.Month, dir model.Directory) model.UserSummary {
	var stamps []time.Time
	for _, e := range events {
		if e.UserID == userID && m.Contains(e.Timestamp) {
			stamps = append(stamps, e.Timestamp.Truncate(time.Minute))
		}
	}
	slices.SortStableFunc(stamps, func(a, b time.Time) int { return a.Compare(b) })

	records := make([]model.Record, 0, len(stamps))
	for _, ts := range stamps {
		s := ts.Format(RecordLayout)
		records = append(records, model.Record{
			Date:     ts.Format(model.DateLayout),
			CheckIn:  s,
			CheckOut: s,
		})
	}

	return model.UserSummary{
		UserID:       userID,
		Username:     dir.Name(userID),
		TotalMinutes: pairedMinutes(stamps),
		Records:      records,
	}
}

// pairedMinutes sums consecutive-pair intervals of sorted stamps.
func pairedMinutes(stamps []time.Time) int {
	var (
		total    time.Duration
		lastOut  time.Time
		haveLast bool
	)
	for i := 0; i+1 < len(stamps); i++ {
		in, out := stamps[i], stamps[i+1]
		if !haveLast || !lastOut.Equal(in) {
			total += out.Sub(in)
		}
		lastOut, haveLast = out, true
	}
	if total < 0 {
		return 0
	}
	return int(total / time.Minute)
}
