// Package tui provides the Bubble Tea tracking interface.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/stats"
)

const (
	recentCount      = 5
	intervalSparkLen = 40
)

// Tracker is the session lifecycle the screen drives.
type Tracker interface {
	Start()
	Stop() (model.Session, bool, error)
	Tracking() bool
	StartedAt() time.Time
	Elapsed() time.Duration
	CurrentConsistency() int
	CurrentAverageInterval() float64
	CurrentIntervals() []float64
	ClickCount() int
}

// Clicks receives click timestamps.
type Clicks interface {
	RecordTime(t time.Time)
}

// History lists archived sessions, oldest first.
type History interface {
	Sessions() []model.Session
	MaxSessions() int
}

type tickMsg time.Time

// Model implements the Bubble Tea tracking UI.
type Model struct {
	config  model.Config
	tracker Tracker
	clicks  Clicks
	history History
	logger  *slog.Logger
	now     func() time.Time
	copyText func(string) error

	width  int
	height int

	showPanel bool
	status    string
	statusErr bool

	last    model.Session
	hasLast bool
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	activeCardStyle = cardStyle.Copy().BorderForeground(lipgloss.Color("#C89A3A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	panelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a tracking TUI model.
func NewModel(cfg model.Config, tr Tracker, clicks Clicks, history History, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		config:    cfg,
		tracker:   tr,
		clicks:    clicks,
		history:   history,
		logger:    logger,
		now:       time.Now,
		copyText:  clipboard.WriteAll,
		showPanel: cfg.ShowPanel,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	interval := m.config.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		return m, m.tick()
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress {
			m.click()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.stop()
			return m, tea.Quit
		case "s":
			m.start()
		case "x":
			m.stop()
		case " ", "c":
			m.click()
		case "h":
			m.showPanel = !m.showPanel
		case "y":
			m.copyLast()
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{titleStyle.Render("AFK Stats"), m.renderCards()}
	if line := m.renderIntervals(); line != "" {
		sections = append(sections, line)
	}
	if m.showPanel {
		sections = append(sections, m.renderPanel())
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	footerHeight := lipgloss.Height(footer)
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	footerLines := lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLines
}

func (m *Model) start() {
	restart := m.tracker.Tracking()
	m.tracker.Start()
	if restart {
		m.setStatus("Session restarted", false)
	} else {
		m.setStatus("Tracking started", false)
	}
	m.logger.Debug("session started", "restart", restart)
}

func (m *Model) stop() {
	session, ok, err := m.tracker.Stop()
	if !ok {
		return
	}
	m.last = session
	m.hasLast = true
	if err != nil {
		m.logger.Error("failed to save session", "id", session.ID, "err", err)
		m.setStatus(fmt.Sprintf("failed to save session: %v", err), true)
		return
	}
	m.logger.Info("session saved", "id", session.ID, "clicks", session.ClickCount, "consistency", session.ConsistencyScore)
	m.setStatus(fmt.Sprintf("Saved %s", session.Name), false)
}

func (m *Model) click() {
	if !m.tracker.Tracking() {
		return
	}
	m.clicks.RecordTime(m.now())
}

func (m *Model) copyLast() {
	if !m.hasLast {
		return
	}
	if err := m.copyText(m.last.ClipboardText()); err != nil {
		m.logger.Warn("failed to copy session", "id", m.last.ID, "err", err)
		m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return
	}
	m.setStatus("Copied last session", false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) renderCards() string {
	style := cardStyle
	state := "Idle"
	if m.tracker.Tracking() {
		style = activeCardStyle
		state = "Since " + m.tracker.StartedAt().Format("15:04:05")
	}
	cards := []string{
		metricCard(style, "Status", state),
		metricCard(style, "Consistency", fmt.Sprintf("%d%%", m.tracker.CurrentConsistency())),
		metricCard(style, "Avg Interval", fmt.Sprintf("%.0f ms", m.tracker.CurrentAverageInterval())),
		metricCard(style, "Clicks", fmt.Sprintf("%d", m.tracker.ClickCount())),
		metricCard(style, "Elapsed", stats.FormatDuration(m.tracker.Elapsed())),
	}
	if m.width > 0 && m.width < 70 {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderIntervals() string {
	intervals := m.tracker.CurrentIntervals()
	if len(intervals) == 0 {
		return ""
	}
	if len(intervals) > intervalSparkLen {
		intervals = intervals[len(intervals)-intervalSparkLen:]
	}
	return panelStyle.Render("Intervals [" + stats.Sparkline(intervals) + "]")
}

func metricCard(style lipgloss.Style, label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return style.Render(content)
}

func (m *Model) renderPanel() string {
	sessions := m.history.Sessions()
	if len(sessions) == 0 {
		return panelStyle.Render("No sessions recorded.")
	}
	consistency := make([]float64, len(sessions))
	for i, s := range sessions {
		consistency[i] = float64(s.ConsistencyScore)
	}
	title := fmt.Sprintf("Recent sessions (%d/%d)  [%s]", len(sessions), m.history.MaxSessions(), stats.Sparkline(consistency))
	lines := []string{cardTitleStyle.Render(title)}
	for i := len(sessions) - 1; i >= 0 && len(lines) <= recentCount; i-- {
		s := sessions[i]
		lines = append(lines, panelStyle.Render(fmt.Sprintf("%s  %3d%%  %6d ms  %4d clicks  %s",
			stats.TruncateName(s.Name, m.config.NameWidth),
			s.ConsistencyScore,
			s.RoundedInterval(),
			s.ClickCount,
			stats.FormatDuration(s.Duration()),
		)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d%% · %.0f ms · %d clicks",
			m.last.ConsistencyScore, m.last.AvgInterval, m.last.ClickCount))
	}
	segments = append(segments, "s start  x stop  space/click record  y copy  h history  q quit")
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.status == "" {
		return footer
	}
	if m.statusErr {
		return footer + "\n" + errorStyle.Render(m.status)
	}
	return footer + "\n" + footerStyle.Render(m.status)
}
