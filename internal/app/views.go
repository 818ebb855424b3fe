package service

import (
	"time"

	"github.com/okian/punchclock/internal/domain/attendance"
	"github.com/okian/punchclock/internal/domain/model"
	"github.com/okian/punchclock/internal/domain/period"
)

// AttendanceView is the JSON form of an attendance table.
type AttendanceView struct {
	Period string           `json:"period"`
	Month  string           `json:"month,omitempty"`
	Dates  []string         `json:"dates"`
	Users  []UserAttendance `json:"users"`
}

// UserAttendance is one user's row of an AttendanceView.
type UserAttendance struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	TotalMinutes int       `json:"total_minutes"`
	Days         []DayView `json:"days"`
}

// DayView is one bucket of a user row. Times are null when the user has no
// punch that day.
type DayView struct {
	Date     string     `json:"date"`
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Minutes  int        `json:"minutes"`
}

func newAttendanceView(p period.Period, month string, t attendance.Table, users model.Directory) AttendanceView {
	totals := t.Totals()
	view := AttendanceView{
		Period: p.String(),
		Month:  month,
		Dates:  t.Dates,
		Users:  make([]UserAttendance, 0, len(t.UserIDs)),
	}
	if view.Dates == nil {
		view.Dates = []string{}
	}
	for _, id := range t.UserIDs {
		row := UserAttendance{
			UserID:       id,
			Username:     users.Name(id),
			TotalMinutes: totals[id],
			Days:         make([]DayView, 0, len(t.Dates)),
		}
		for _, d := range t.Dates {
			b := t.Bucket(id, d)
			row.Days = append(row.Days, DayView{Date: d, CheckIn: b.CheckIn, CheckOut: b.CheckOut, Minutes: b.Minutes()})
		}
		view.Users = append(view.Users, row)
	}
	return view
}
