// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/afkstats/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates archived sessions.
type Summary struct {
	Sessions        int
	AvgConsistency  float64
	BestConsistency int
	AvgInterval     float64
	TotalClicks     int
	TotalDuration   time.Duration
}

// Summarize aggregates sessions. Sessions with no clicks still count toward
// totals but not toward the interval average.
func Summarize(sessions []model.Session) Summary {
	var sum Summary
	if len(sessions) == 0 {
		return sum
	}
	var consistencyTotal, intervalTotal float64
	intervalCount := 0
	for _, s := range sessions {
		consistencyTotal += float64(s.ConsistencyScore)
		if s.ConsistencyScore > sum.BestConsistency {
			sum.BestConsistency = s.ConsistencyScore
		}
		if s.ClickCount >= 2 {
			intervalTotal += s.AvgInterval
			intervalCount++
		}
		sum.TotalClicks += s.ClickCount
		sum.TotalDuration += s.Duration()
	}
	sum.Sessions = len(sessions)
	sum.AvgConsistency = consistencyTotal / float64(len(sessions))
	if intervalCount > 0 {
		sum.AvgInterval = intervalTotal / float64(intervalCount)
	}
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.Session) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded.")
		return err
	}
	sum := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", sum.Sessions),
		fmt.Sprintf("Avg Consistency: %.1f", sum.AvgConsistency),
		fmt.Sprintf("Best Consistency: %d", sum.BestConsistency),
		fmt.Sprintf("Avg Interval: %.0f ms", sum.AvgInterval),
		fmt.Sprintf("Total Clicks: %d", sum.TotalClicks),
		fmt.Sprintf("Total Time: %s", FormatDuration(sum.TotalDuration)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints archived sessions, oldest first, with names cut to nameWidth.
func RenderSessionTable(w io.Writer, sessions []model.Session, nameWidth int, loc *time.Location) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded.")
		return err
	}
	if loc == nil {
		loc = time.Local
	}
	headers := []string{"ID", "Name", "Started", "Duration", "Clicks", "Consistency", "Avg Interval"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			ShortID(s.ID),
			TruncateName(s.Name, nameWidth),
			s.Started().In(loc).Format("2006-01-02 15:04"),
			FormatDuration(s.Duration()),
			fmt.Sprintf("%d", s.ClickCount),
			fmt.Sprintf("%d", s.ConsistencyScore),
			fmt.Sprintf("%d ms", s.RoundedInterval()),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShortID returns the first eight characters of an id.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// FormatDuration renders d as h:mm:ss or m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
