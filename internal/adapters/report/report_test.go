package report_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/punchclock/internal/adapters/report"
	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
	"github.com/okian/punchclock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func at(user string, d, hh, mm int) model.ClockEvent {
	return model.ClockEvent{UserID: user, Timestamp: time.Date(2024, time.March, d, hh, mm, 0, 0, time.UTC)}
}

func sampleDocument(days int) report.Document {
	var events []model.ClockEvent
	for d := 1; d <= days; d++ {
		events = append(events, at("1", d, 9, 0), at("1", d, 17, 30))
	}
	dir := model.NewDirectory(map[string]string{"1": "Zoë", "2": "Bob"})
	table := attendance.BuildTable(events, attendance.Selection{}, dir)
	return report.Document{
		Title:       period.Title("current-month"),
		GeneratedAt: time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC),
		Table:       table,
		Totals:      table.Totals(),
		Users:       dir,
	}
}

func TestCell(t *testing.T) {
	Convey("Given day buckets", t, func() {
		Convey("A full bucket prints both times in 12-hour form", func() {
			var b model.DayBucket
			b.Observe(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
			b.Observe(time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC))
			So(report.Cell(b), ShouldEqual, "9:00am/5:30pm")
		})

		Convey("An empty bucket prints placeholders", func() {
			So(report.Cell(model.DayBucket{}), ShouldEqual, "--/--")
		})
	})
}

func TestChunkDates(t *testing.T) {
	Convey("Given a list of dates", t, func() {
		dates := make([]string, 19)
		for i := range dates {
			dates[i] = fmt.Sprintf("2024-03-%02d", i+1)
		}

		Convey("When chunked by the table width", func() {
			chunks := report.ChunkDates(dates, report.DatesPerTable)

			Convey("Then groups are full except the last", func() {
				So(chunks, ShouldHaveLength, 3)
				So(chunks[0], ShouldHaveLength, 8)
				So(chunks[1], ShouldHaveLength, 8)
				So(chunks[2], ShouldHaveLength, 3)
				So(chunks[2][2], ShouldEqual, "2024-03-19")
			})
		})

		Convey("When there are no dates", func() {
			So(report.ChunkDates(nil, report.DatesPerTable), ShouldBeEmpty)
		})
	})
}

func TestHeading(t *testing.T) {
	Convey("Given a directory and totals", t, func() {
		dir := model.NewDirectory(map[string]string{"7": "Ada"})
		totals := map[string]int{"7": 510}

		So(report.Heading("7", dir, totals), ShouldEqual, "ID: 7, Username: Ada, Total Minutes Spent: 510")
		So(report.Heading("9", dir, totals), ShouldEqual, "ID: 9, Username: Unknown, Total Minutes Spent: 0")
	})
}

func TestPDFRenderer(t *testing.T) {
	Convey("Given a PDF renderer", t, func() {
		r := report.NewPDFRenderer()
		So(r.ContentType(), ShouldEqual, "application/pdf")

		Convey("When rendering a report spanning several tables", func() {
			out, err := r.Render(context.Background(), sampleDocument(20))

			Convey("Then a PDF document is produced", func() {
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(out, []byte("%PDF-")), ShouldBeTrue)
			})
		})

		Convey("When rendering a report without dates", func() {
			out, err := r.Render(context.Background(), sampleDocument(0))

			Convey("Then headings alone still make a valid document", func() {
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(out, []byte("%PDF-")), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := r.Render(ctx, sampleDocument(3))

			Convey("Then rendering fails with ErrRender", func() {
				So(errors.Is(err, report.ErrRender), ShouldBeTrue)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestCache(t *testing.T) {
	Convey("Given a report cache", t, func() {
		c := report.NewCache(time.Minute)
		defer c.Stop()

		v1, v2 := uuid.New(), uuid.New()
		key := report.Key{Version: v1, Period: period.LastMonth, Month: "2024-02", Users: []string{"1", "2"}}

		Convey("When a document is stored", func() {
			c.Set(key, []byte("pdf"))

			Convey("Then the same key hits", func() {
				got, ok := c.Get(key)
				So(ok, ShouldBeTrue)
				So(string(got), ShouldEqual, "pdf")
				So(c.Len(), ShouldEqual, 1)
			})

			Convey("Then a newer snapshot version misses", func() {
				other := key
				other.Version = v2
				_, ok := c.Get(other)
				So(ok, ShouldBeFalse)
			})

			Convey("Then a different selection misses", func() {
				other := key
				other.Users = []string{"1"}
				_, ok := c.Get(other)
				So(ok, ShouldBeFalse)
			})
		})
	})
}
