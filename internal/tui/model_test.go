package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/afkstats/internal/clicks"
	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/tracker"
)

type memArchive struct {
	sessions []model.Session
	err      error
}

func (a *memArchive) Add(s model.Session) error {
	a.sessions = append(a.sessions, s)
	return a.err
}

func (a *memArchive) Sessions() []model.Session {
	return append([]model.Session(nil), a.sessions...)
}

func (a *memArchive) MaxSessions() int { return 20 }

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestModel(archive *memArchive) (*Model, *testClock) {
	clock := &testClock{now: time.Date(2024, 2, 21, 13, 50, 0, 0, time.UTC)}
	rec := clicks.NewRecorder()
	tr := tracker.New(rec, archive,
		tracker.WithClock(clock.Now),
		tracker.WithLocation(time.UTC),
		tracker.WithIDGenerator(func() string { return "session-1" }),
	)
	cfg := model.Config{PollInterval: time.Second, ShowPanel: true, NameWidth: 30}
	m := NewModel(cfg, tr, rec, archive, nil)
	m.now = clock.Now
	return m, clock
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTrackingFlow(t *testing.T) {
	archive := &memArchive{}
	m, clock := newTestModel(archive)

	m.Update(key(" "))
	if m.tracker.ClickCount() != 0 {
		t.Fatalf("clicks before start must be ignored")
	}

	m.Update(key("s"))
	if !m.tracker.Tracking() {
		t.Fatalf("expected tracking after s")
	}
	for i := 0; i < 4; i++ {
		m.Update(key("c"))
		clock.now = clock.now.Add(time.Second)
	}
	m.Update(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if got := m.tracker.ClickCount(); got != 5 {
		t.Fatalf("expected 5 clicks, got %d", got)
	}
	if got := m.tracker.CurrentConsistency(); got != 100 {
		t.Fatalf("expected consistency 100, got %d", got)
	}
	if !strings.Contains(m.View(), "Intervals [++++]") {
		t.Fatalf("expected interval sparkline in view:\n%s", m.View())
	}

	m.Update(key("x"))
	if m.tracker.Tracking() {
		t.Fatalf("expected idle after x")
	}
	if len(archive.sessions) != 1 {
		t.Fatalf("expected archived session, got %d", len(archive.sessions))
	}
	saved := archive.sessions[0]
	if saved.ID != "session-1" || saved.ClickCount != 5 || saved.AvgInterval != 1000 {
		t.Fatalf("unexpected session: %+v", saved)
	}
	if !strings.Contains(m.status, "Saved Session 2024-02-21 13:50") {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestQuitStopsActiveSession(t *testing.T) {
	archive := &memArchive{}
	m, _ := newTestModel(archive)
	m.Update(key("s"))
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if len(archive.sessions) != 1 {
		t.Fatalf("expected session archived on quit")
	}
}

func TestStopReportsSaveError(t *testing.T) {
	archive := &memArchive{err: errors.New("disk full")}
	m, _ := newTestModel(archive)
	m.Update(key("s"))
	m.Update(key("x"))
	if !m.statusErr || !strings.Contains(m.status, "disk full") {
		t.Fatalf("expected error status, got %q", m.status)
	}
	if m.tracker.Tracking() {
		t.Fatalf("tracker must be idle after a failed save")
	}
}

func TestCopyLastSession(t *testing.T) {
	m, _ := newTestModel(&memArchive{})
	var copied []string
	m.copyText = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	m.Update(key("y"))
	if len(copied) != 0 {
		t.Fatalf("nothing to copy before a session ends")
	}
	m.Update(key("s"))
	m.Update(key("x"))
	m.Update(key("y"))
	if len(copied) != 1 || !strings.HasPrefix(copied[0], "Session: Session 2024-02-21 13:50 | ") {
		t.Fatalf("unexpected clipboard content: %v", copied)
	}
	if m.status != "Copied last session" {
		t.Fatalf("unexpected status: %q", m.status)
	}
}

func TestTogglePanelAndView(t *testing.T) {
	archive := &memArchive{sessions: []model.Session{
		{ID: "a", Name: "Morning", ConsistencyScore: 85, AvgInterval: 45000, ClickCount: 42, EndTime: 60_000},
	}}
	m, _ := newTestModel(archive)
	out := m.View()
	if !containsAll(out, []string{"Idle", "Consistency", "Recent sessions (1/20)", "Morning", "45000 ms"}) {
		t.Fatalf("view missing expected segments:\n%s", out)
	}
	m.Update(key("h"))
	if m.showPanel {
		t.Fatalf("expected panel hidden")
	}
	if strings.Contains(m.View(), "Recent sessions") {
		t.Fatalf("panel should not render when hidden")
	}
}

func TestTickReschedules(t *testing.T) {
	m, _ := newTestModel(&memArchive{})
	if cmd := m.Init(); cmd == nil {
		t.Fatalf("expected tick command from Init")
	}
	if _, cmd := m.Update(tickMsg(time.Now())); cmd == nil {
		t.Fatalf("expected tick to reschedule")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
