package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Name", "Clicks", "Score"}
	rows := [][]string{
		{"a", "120", "97"},
		{"Fishing", "8", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Name     Clicks  Score" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a           120     97" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Fishing       8      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "N"}, [][]string{{"釣り", "1"}, {"ab", "2"}}, nil)
	if lines[1] != "釣り  1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab    2" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}

func TestTruncateName(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 30, "short"},
		{"A very long session name that goes on", 10, "A very ..."},
		{"abcdef", 3, "abc"},
		{"釣り釣り釣り", 7, "釣り..."},
		{"anything", 0, "anything"},
	}
	for _, tc := range cases {
		if got := TruncateName(tc.in, tc.width); got != tc.want {
			t.Fatalf("TruncateName(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
