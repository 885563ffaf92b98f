package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/afkstats/internal/model"
)

const (
	trendLabelWidth     = 14
	minTrendWidth       = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
)

var trendGlyphs = []rune("▁▂▃▄▅▆▇█")

var trendColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m"}

// Series represents a named data series for trend rendering.
type Series struct {
	Name   string
	Unit   string
	Values []float64
}

// SessionSeries extracts consistency and average-interval series, oldest first.
func SessionSeries(sessions []model.Session, window int) []Series {
	consistency := make([]float64, len(sessions))
	interval := make([]float64, len(sessions))
	clicks := make([]float64, len(sessions))
	for i, s := range sessions {
		consistency[i] = float64(s.ConsistencyScore)
		interval[i] = s.AvgInterval
		clicks[i] = float64(s.ClickCount)
	}
	return []Series{
		{Name: "Consistency", Values: MovingAverage(consistency, window)},
		{Name: "Avg interval", Unit: "ms", Values: MovingAverage(interval, window)},
		{Name: "Clicks", Values: MovingAverage(clicks, window)},
	}
}

// RenderTrends prints one block-glyph trend line per series. A width of 0
// uses the terminal width of stdout.
func RenderTrends(w io.Writer, sessions []model.Session, window, width int, forceColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	plotWidth := TrendWidthFor(width)
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintf(w, "Trends (window %d)\n", maxInt(window, 1)); err != nil {
		return err
	}
	for i, s := range SessionSeries(sessions, window) {
		line := TrendLine(s.Values, plotWidth)
		if useColor {
			line = trendColors[i%len(trendColors)] + line + colorReset
		}
		lo, hi := minMax(s.Values)
		if _, err := fmt.Fprintf(w, "%-*s %s  min=%.0f%s max=%.0f%s\n",
			trendLabelWidth, s.Name, line, lo, s.Unit, hi, s.Unit); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// TrendLine renders values as block glyphs, averaging buckets when there are
// more values than width.
func TrendLine(values []float64, width int) string {
	values = downsample(values, width)
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	var b strings.Builder
	for _, v := range values {
		idx := len(trendGlyphs) / 2
		if hi-lo > 1e-9 {
			pos := (v - lo) / (hi - lo)
			idx = int(math.Round(pos * float64(len(trendGlyphs)-1)))
		}
		if idx < 0 {
			idx = 0
		}
		if idx >= len(trendGlyphs) {
			idx = len(trendGlyphs) - 1
		}
		b.WriteRune(trendGlyphs[idx])
	}
	return b.String()
}

// TrendWidthFor computes the glyph budget that fits within totalWidth.
func TrendWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minTrendWidth
	}
	// label, separating space, and room for the min/max suffix
	w := totalWidth - trendLabelWidth - 1 - 24
	if w < minTrendWidth {
		w = minTrendWidth
	}
	return w
}

func downsample(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) <= width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	for i := 0; i < width; i++ {
		start := i * len(values) / width
		end := (i + 1) * len(values) / width
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
