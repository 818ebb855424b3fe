package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			So(Init(), ShouldBeNil)

			Convey("Then Get returns a usable logger", func() {
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := InitWithOptions(&bytes.Buffer{}, Format("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithOptions(&buf, FormatJSON), ShouldBeNil)
		defer func() { _ = Init() }()

		ctx := context.Background()

		Convey("When logging with fields through a named logger", func() {
			Named("refresh").Info(ctx, "snapshot published", String("kind", "events"), Int("count", 3))

			var line map[string]any
			So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)

			Convey("Then the fields and component are present", func() {
				So(line["msg"], ShouldEqual, "snapshot published")
				So(line["kind"], ShouldEqual, "events")
				So(line["count"], ShouldEqual, 3.0)
				So(line["component"], ShouldEqual, "refresh")
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When named loggers are chained", func() {
			Named("service").Named("refresh").Info(ctx, "chained")

			Convey("Then one dotted component attribute is written", func() {
				So(strings.Count(buf.String(), `"component"`), ShouldEqual, 1)
				var line map[string]any
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["component"], ShouldEqual, "service.refresh")
			})
		})

				Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Warn(ctx, "dropped")
			Get().Error(ctx, "kept", Error(errors.New("boom")))

			Convey("Then only the error line is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "dropped")
				So(buf.String(), ShouldContainSubstring, "kept")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("DEBUG"), ShouldBeNil)
		So(SetLevelString("warning"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}
