package terminal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/punchclock/internal/adapters/terminal"
	"github.com/okian/punchclock/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newBridge(handler http.HandlerFunc) (*httptest.Server, *terminal.BridgeGateway) {
	srv := httptest.NewServer(handler)
	gw, err := terminal.NewBridgeGateway(srv.URL,
		terminal.WithHTTPClient(srv.Client()),
		terminal.WithLocation(time.UTC),
		terminal.WithTimeouts(2*time.Second, 2*time.Second),
	)
	if err != nil {
		panic(err)
	}
	return srv, gw
}

func TestBridgeGateway(t *testing.T) {
	Convey("Given a healthy bridge", t, func() {
		srv, gw := newBridge(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/users":
				_, _ = w.Write([]byte(`[{"user_id":"1","name":"Ana"},{"user_id":"","name":"ghost"}]`))
			case "/attendance":
				_, _ = w.Write([]byte(`[{"user_id":"1","timestamp":"2024-03-01 09:00:00"},{"user_id":"1","timestamp":"2024-03-01T17:30:00Z"}]`))
			default:
				http.NotFound(w, r)
			}
		})
		defer srv.Close()
		ctx := context.Background()

		Convey("When fetching users", func() {
			dir, err := gw.FetchUsers(ctx)

			Convey("Then blank ids are dropped", func() {
				So(err, ShouldBeNil)
				So(dir.Len(), ShouldEqual, 1)
				So(dir.Name("1"), ShouldEqual, "Ana")
			})
		})

		Convey("When fetching events", func() {
			events, err := gw.FetchEvents(ctx)

			Convey("Then both timestamp styles parse", func() {
				So(err, ShouldBeNil)
				So(len(events), ShouldEqual, 2)
				So(events[0].Timestamp.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)), ShouldBeTrue)
				So(events[1].Timestamp.Hour(), ShouldEqual, 17)
			})
		})
	})

	Convey("Given a failing bridge", t, func() {
		srv, gw := newBridge(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "device busy", http.StatusBadGateway)
		})
		defer srv.Close()

		Convey("Then errors are reported as device unavailable", func() {
			_, err := gw.FetchUsers(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)

			_, err = gw.FetchEvents(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given a bridge returning a bad timestamp", t, func() {
		srv, gw := newBridge(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"user_id":"1","timestamp":"yesterday"}]`))
		})
		defer srv.Close()

		Convey("Then the fetch fails as a protocol error", func() {
			_, err := gw.FetchEvents(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given an unreachable bridge", t, func() {
		srv, gw := newBridge(func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		Convey("Then the connect failure is device unavailable", func() {
			_, err := gw.FetchUsers(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})

	Convey("Given an invalid bridge url", t, func() {
		_, err := terminal.NewBridgeGateway("ftp://terminal")
		So(err, ShouldNotBeNil)
	})
}

func TestFileGateway(t *testing.T) {
	Convey("Given a YAML fixture", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "terminal.yaml")
		content := `
users:
  - user_id: "1"
    name: Ana
  - user_id: 2
    name: Bea
events:
  - user_id: "1"
    timestamp: "2024-03-01 09:00:00"
  - user_id: "2"
    timestamp: "2024-03-01T10:15:00"
`
		So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)
		gw := terminal.NewFileGateway(path, time.UTC)

		Convey("Then users and events load", func() {
			users, err := gw.FetchUsers(context.Background())
			So(err, ShouldBeNil)
			So(users.IDs(), ShouldResemble, []string{"1", "2"})

			events, err := gw.FetchEvents(context.Background())
			So(err, ShouldBeNil)
			So(len(events), ShouldEqual, 2)
			So(events[1].UserID, ShouldEqual, "2")
			So(events[1].Timestamp.Minute(), ShouldEqual, 15)
		})
	})

	Convey("Given a missing fixture", t, func() {
		gw := terminal.NewFileGateway(filepath.Join(t.TempDir(), "nope.yaml"), time.UTC)

		Convey("Then fetches fail as device unavailable", func() {
			_, err := gw.FetchUsers(context.Background())
			So(errors.Is(err, terminal.ErrDeviceUnavailable), ShouldBeTrue)
		})
	})
}

func TestParseTimestamp(t *testing.T) {
	Convey("Given a non-UTC location", t, func() {
		loc := time.FixedZone("UTC+3", 3*60*60)

		Convey("Then zoneless values are read in that location", func() {
			ts, err := terminal.ParseTimestamp("2024-03-01 23:30", loc)
			So(err, ShouldBeNil)
			So(ts.Day(), ShouldEqual, 1)
			So(ts.UTC().Hour(), ShouldEqual, 20)
		})

		Convey("Then zoned values are converted into it", func() {
			ts, err := terminal.ParseTimestamp("2024-03-01T22:30:00Z", loc)
			So(err, ShouldBeNil)
			So(ts.Day(), ShouldEqual, 2)
		})
	})
}
