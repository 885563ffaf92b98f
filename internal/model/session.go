package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Session is one completed tracking interval and the statistics derived from it.
// Only Name may change after creation.
type Session struct {
	ID               string
	Name             string
	StartTime        int64 // epoch ms
	EndTime          int64 // epoch ms
	ClickCount       int
	ConsistencyScore int
	AvgInterval      float64 // ms
}

const clipboardDateLayout = "Jan 02 2006"

var luaEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

// Started returns the session start as a time.Time.
func (s Session) Started() time.Time {
	return time.UnixMilli(s.StartTime)
}

// Duration returns the tracked span.
func (s Session) Duration() time.Duration {
	return time.Duration(s.EndTime-s.StartTime) * time.Millisecond
}

// DurationMinutes returns whole minutes between start and end.
func (s Session) DurationMinutes() int64 {
	return (s.EndTime - s.StartTime) / 60000
}

// RoundedInterval returns the average interval rounded to the nearest millisecond.
func (s Session) RoundedInterval() int64 {
	return int64(math.Round(s.AvgInterval))
}

// ClipboardText renders the one-line summary using the local time zone.
func (s Session) ClipboardText() string {
	return s.ClipboardTextIn(time.Local)
}

// ClipboardTextIn renders the one-line summary with the date in loc.
// Downstream tools parse this line; keep the layout stable.
func (s Session) ClipboardTextIn(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	date := s.Started().In(loc).Format(clipboardDateLayout)
	return fmt.Sprintf("Session: %s | %s | Consistency: %d | Avg: %dms | Clicks: %d | Duration: %dm",
		s.Name, date, s.ConsistencyScore, s.RoundedInterval(), s.ClickCount, s.DurationMinutes())
}

// TableRow renders the session as a Lua table entry.
func (s Session) TableRow() string {
	return fmt.Sprintf("\t{ name = \"%s\", group = \"\", consistency = %d, interval = %d, clicks = %d, duration = %d },",
		luaEscaper.Replace(s.Name), s.ConsistencyScore, s.RoundedInterval(), s.ClickCount, s.DurationMinutes())
}
