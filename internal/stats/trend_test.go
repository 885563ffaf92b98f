package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/afkstats/internal/model"
)

func TestTrendLine(t *testing.T) {
	if got := TrendLine([]float64{0, 7}, 10); got != "▁█" {
		t.Fatalf("unexpected trend line: %q", got)
	}
	if got := TrendLine([]float64{3, 3, 3}, 10); got != "▅▅▅" {
		t.Fatalf("flat series should use the middle glyph, got %q", got)
	}
	if got := TrendLine(nil, 10); got != "" {
		t.Fatalf("expected empty line, got %q", got)
	}
}

func TestTrendLineDownsamples(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i)
	}
	got := TrendLine(values, 10)
	if n := utf8.RuneCountInString(got); n != 10 {
		t.Fatalf("expected 10 glyphs, got %d (%q)", n, got)
	}
	if !strings.HasPrefix(got, "▁") || !strings.HasSuffix(got, "█") {
		t.Fatalf("expected rising trend, got %q", got)
	}
}

func TestTrendWidthFor(t *testing.T) {
	if got := TrendWidthFor(0); got != minTrendWidth {
		t.Fatalf("expected min width %d, got %d", minTrendWidth, got)
	}
	if got := TrendWidthFor(80); got != 80-trendLabelWidth-1-24 {
		t.Fatalf("unexpected width %d", got)
	}
}

func TestRenderTrends(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	sessions := []model.Session{
		{ConsistencyScore: 40, AvgInterval: 1200, ClickCount: 10},
		{ConsistencyScore: 60, AvgInterval: 1100, ClickCount: 12},
		{ConsistencyScore: 80, AvgInterval: 1000, ClickCount: 14},
	}
	var buf bytes.Buffer
	if err := RenderTrends(&buf, sessions, 1, 80, true); err != nil {
		t.Fatalf("RenderTrends failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Trends (window 1)", "Consistency", "min=40 max=80", "Avg interval", "min=1000ms max=1200ms", "Clicks"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("NO_COLOR must disable escapes")
	}

	buf.Reset()
	if err := RenderTrends(&buf, nil, 1, 80, false); err != nil || buf.Len() != 0 {
		t.Fatalf("expected no output for empty history")
	}
}
