package terminalsim_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/punchclock/internal/adapters/terminal"
	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/period"
	"github.com/okian/punchclock/internal/terminalsim"
	"github.com/okian/punchclock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

var now = time.Date(2024, time.January, 17, 14, 0, 0, 0, time.UTC)

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := terminalsim.Config{Users: 6, Seed: 42, Location: time.UTC}
		data := terminalsim.Generate(cfg, now)

		Convey("Then users get sequential numeric ids", func() {
			So(data.Users, ShouldHaveLength, 6)
			So(data.Users[0].UserID, ShouldEqual, "1")
			So(data.Users[5].UserID, ShouldEqual, "6")
			So(data.Users[0].Name, ShouldEqual, "Ada 1")
		})

		Convey("Then the same seed gives the same punches", func() {
			again := terminalsim.Generate(cfg, now)
			So(again.Punches, ShouldResemble, data.Punches)
		})

		Convey("Then punches parse and none lie in the future", func() {
			for _, p := range data.Punches {
				ts, err := terminal.ParseTimestamp(p.Timestamp, time.UTC)
				So(err, ShouldBeNil)
				So(ts.After(now), ShouldBeFalse)
				So(ts.Weekday(), ShouldNotEqual, time.Saturday)
				So(ts.Weekday(), ShouldNotEqual, time.Sunday)
			}
		})
	})
}

func TestServer(t *testing.T) {
	Convey("Given a simulator behind a bridge gateway", t, func() {
		data := terminalsim.Generate(terminalsim.Config{Users: 4, Seed: 7, Location: time.UTC}, now)
		srv := httptest.NewServer(terminalsim.NewServer(terminalsim.Config{}, data).Handler())
		defer srv.Close()

		gw, err := terminal.NewBridgeGateway(srv.URL, terminal.WithLocation(time.UTC))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When users and punches are fetched", func() {
			users, err := gw.FetchUsers(ctx)
			So(err, ShouldBeNil)
			events, err := gw.FetchEvents(ctx)
			So(err, ShouldBeNil)

			Convey("Then everything the simulator holds arrives", func() {
				So(users.Len(), ShouldEqual, 4)
				So(events, ShouldHaveLength, len(data.Punches))
			})

			Convey("Then retention drops the stale punches across the year boundary", func() {
				kept := attendance.Retain(events, now)
				So(len(events)-len(kept), ShouldEqual, 4*5)

				dec := period.Month{Year: 2023, Month: time.December}
				So(len(attendance.FilterByMonth(kept, dec)), ShouldBeGreaterThan, 0)
			})
		})
	})

	Convey("Given a simulator that fails every second request", t, func() {
		data := terminalsim.Generate(terminalsim.Config{Users: 1, Seed: 1, Location: time.UTC}, now)
		srv := httptest.NewServer(terminalsim.NewServer(terminalsim.Config{FailEvery: 2}, data).Handler())
		defer srv.Close()

		Convey("Then the second request is a 503", func() {
			first, err := http.Get(srv.URL + "/users")
			So(err, ShouldBeNil)
			_ = first.Body.Close()
			second, err := http.Get(srv.URL + "/users")
			So(err, ShouldBeNil)
			_ = second.Body.Close()

			So(first.StatusCode, ShouldEqual, http.StatusOK)
			So(second.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("Then the gateway reports the device as unavailable", func() {
			gw, err := terminal.NewBridgeGateway(srv.URL)
			So(err, ShouldBeNil)
			_, _ = gw.FetchUsers(context.Background())
			_, err = gw.FetchUsers(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running simulator", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		s := terminalsim.NewServer(terminalsim.Config{Addr: "127.0.0.1:0"}, terminalsim.Dataset{})
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		Convey("When the context is cancelled", func() {
			time.Sleep(20 * time.Millisecond)
			cancel()

			Convey("Then Run returns cleanly", func() {
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(2 * time.Second):
					t.Fatal("Run did not return")
				}
			})
		})
	})
}
