// Package report renders attendance tables into downloadable documents.
package report

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
)

// ErrRender is returned when a document could not be produced.
var ErrRender = errors.New("report render failed")

// DatesPerTable is the number of date columns in one table of a report.
const DatesPerTable = 8

const (
	cellTimeLayout = "3:04pm"
	missingTime    = "--"
)

// Document is everything a renderer needs for one report.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Table       attendance.Table
	Totals      map[string]int
	Users       model.Directory
}

// Renderer turns a Document into bytes.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
	ContentType() string
}

// ChunkDates splits dates into groups of at most size entries.
func ChunkDates(dates []string, size int) [][]string {
	if size < 1 {
		size = DatesPerTable
	}
	var chunks [][]string
	for start := 0; start < len(dates); start += size {
		end := min(start+size, len(dates))
		chunks = append(chunks, dates[start:end])
	}
	return chunks
}

// Cell formats a bucket as "9:00am/5:30pm", with "--" for a missing side.
func Cell(b model.DayBucket) string {
	return clock(b.CheckIn) + "/" + clock(b.CheckOut)
}

func clock(t *time.Time) string {
	if t == nil {
		return missingTime
	}
	return t.Format(cellTimeLayout)
}

// Heading is the per-user line above that user's tables.
func Heading(userID string, users model.Directory, totals map[string]int) string {
	return "ID: " + userID + ", Username: " + users.Name(userID) + ", Total Minutes Spent: " + strconv.Itoa(totals[userID])
}
