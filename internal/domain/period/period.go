// Package period resolves request period tokens into calendar months.
package period

import (
	"strings"
	"time"
	"unicode"
)

// Period is a reporting window requested by a caller.
type Period int

const (
	// All applies no month filter.
	All Period = iota
	// CurrentMonth is the calendar month containing "now".
	CurrentMonth
	// LastMonth is the calendar month before CurrentMonth.
	LastMonth
)

// Request tokens.
const (
	TokenCurrentMonth = "current-month"
	TokenLastMonth    = "last-month"
	TokenAll          = "all"
)

// Parse maps a request token to a Period. Tokens match exactly, so
// "Current-Month" is unrecognized. Unrecognized tokens fall back to All with
// ok=false; they are never an error.
func Parse(token string) (p Period, ok bool) {
	switch token {
	case TokenCurrentMonth:
		return CurrentMonth, true
	case TokenLastMonth:
		return LastMonth, true
	case TokenAll:
		return All, true
	default:
		return All, false
	}
}

// ParseSummary maps the single-user summary token. Anything other than
// last-month means the current month.
func ParseSummary(token string) Period {
	if p, _ := Parse(token); p == LastMonth {
		return LastMonth
	}
	return CurrentMonth
}

// String returns the request token for p.
func (p Period) String() string {
	switch p {
	case CurrentMonth:
		return TokenCurrentMonth
	case LastMonth:
		return TokenLastMonth
	default:
		return TokenAll
	}
}

// Resolve returns the month selected by p relative to now. All has no month.
func (p Period) Resolve(now time.Time) (Month, bool) {
	switch p {
	case CurrentMonth:
		return MonthOf(now), true
	case LastMonth:
		return MonthOf(now).Previous(), true
	default:
		return Month{}, false
	}
}

// Title turns a request token into a report title: "last-month" becomes
// "Last Month".
func Title(token string) string {
	words := strings.Fields(strings.ReplaceAll(token, "-", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
