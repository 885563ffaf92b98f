// Package statsui provides the Bubble Tea session history browser.
package statsui

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/stats"
)

const (
	tabOverview = iota
	tabSessions
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Archive is the editable session history.
type Archive interface {
	Sessions() []model.Session
	Rename(id, name string) error
	Delete(id string) error
}

// Option configures a Model.
type Option func(*Model)

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithLocation sets the time zone used for dates.
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithLogger sets the logger for failed edits.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Model implements the Bubble Tea history browser.
type Model struct {
	archive   Archive
	cfg       model.ReportConfig
	nameWidth int
	loc       *time.Location
	copyText  func(string) error
	logger    *slog.Logger

	report stats.Report
	rows   []model.Session

	tabs      []string
	activeTab int
	overview  viewport.Model
	table     table.Model

	width  int
	height int

	status    string
	statusErr bool

	renameMode    bool
	renameInput   textinput.Model
	renameID      string
	confirmDelete bool
}

// NewModel constructs a history browser.
func NewModel(archive Archive, cfg model.ReportConfig, nameWidth int, opts ...Option) *Model {
	if cfg.TrendWindow < 1 {
		cfg.TrendWindow = 1
	}
	m := &Model{
		archive:   archive,
		cfg:       cfg,
		nameWidth: nameWidth,
		loc:       time.Local,
		copyText:  clipboard.WriteAll,
		logger:    slog.Default(),
		tabs:      []string{"Overview", "Sessions"},
		overview:  viewport.New(0, 0),
		table:     newSessionTable(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.renameInput = textinput.New()
	m.renameInput.Prompt = "Name: "
	m.renameInput.CharLimit = 0
	m.renameInput.Cursor.SetMode(cursor.CursorBlink)
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.renameMode {
			return m.updateRename(msg)
		}
		if m.confirmDelete {
			m.confirmDelete = false
			if msg.String() == "y" {
				m.deleteSelected()
			} else {
				m.setStatus("Delete cancelled", false)
			}
			return m, nil
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.TrendWindow = nextTrendWindow(m.cfg.TrendWindow)
			m.renderOverview()
			return m, nil
		case "-":
			m.cfg.TrendWindow = prevTrendWindow(m.cfg.TrendWindow)
			m.renderOverview()
			return m, nil
		case "r":
			return m.startRename()
		case "d":
			if _, ok := m.selected(); ok {
				m.confirmDelete = true
				m.setStatus("Delete selected session? (y to confirm)", false)
			}
			return m, nil
		case "y":
			m.copySelected()
			return m, nil
		case "g", "home":
			if m.activeTab == tabSessions {
				m.table.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabSessions {
				m.table.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabSessions {
				m.table, cmd = m.table.Update(msg)
			} else {
				m.overview, cmd = m.overview.Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.renameMode {
		return fitLines(m.renderRenameModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(padLines(m.renderTabs(), m.width), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X"))
	if headerHeight < 1 {
		headerHeight = 1
	}
	footerHeight = 1
	if m.status != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(1, bodyHeight-1))
	promptWidth := lipgloss.Width(m.renameInput.Prompt)
	m.renameInput.Width = maxInt(10, modalInnerWidth(m.width)-promptWidth)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabSessions {
		m.table.Focus()
	} else {
		m.table.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.activeTab == tabSessions {
		if len(m.rows) == 0 {
			return "No sessions recorded."
		}
		return tableMutedStyle.Render(m.table.View())
	}
	return m.overview.View()
}

func (m *Model) renderFooter() string {
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Quit: q"
	if m.activeTab == tabSessions {
		help = "Nav: left/right  Rename: r  Delete: d  Copy: y  Quit: q"
	}
	help = headerStyle.Render(truncateLine(help, m.width))
	if m.status == "" {
		return help
	}
	if m.statusErr {
		return help + "\n" + errorStyle.Render(m.status)
	}
	return help + "\n" + headerStyle.Render(m.status)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	m.updateLayout()
}

func (m *Model) refreshReport() {
	m.report = stats.BuildReport(m.archive, m.cfg)
	m.rows = make([]model.Session, 0, len(m.report.Sessions))
	for i := len(m.report.Sessions) - 1; i >= 0; i-- {
		m.rows = append(m.rows, m.report.Sessions[i])
	}
	row := m.table.Cursor()
	m.table.SetRows(sessionRows(m.rows, m.nameWidth, m.loc))
	if row >= len(m.rows) {
		row = len(m.rows) - 1
	}
	if row < 0 {
		row = 0
	}
	m.table.SetCursor(row)
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.TrendWindow, width))
}

func renderOverview(report stats.Report, window, width int) string {
	if len(report.Sessions) == 0 {
		return "No sessions recorded."
	}
	sum := report.Summary
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", sum.Sessions)),
		metricCard("Avg Consistency", fmt.Sprintf("%.1f", sum.AvgConsistency)),
		metricCard("Best Consistency", fmt.Sprintf("%d", sum.BestConsistency)),
		metricCard("Avg Interval", fmt.Sprintf("%.0f ms", sum.AvgInterval)),
		metricCard("Total Clicks", fmt.Sprintf("%d", sum.TotalClicks)),
		metricCard("Total Time", stats.FormatDuration(sum.TotalDuration)),
	}
	var cardsView string
	if width < 80 {
		cardsView = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		cardsView = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	var buf bytes.Buffer
	if err := stats.RenderTrends(&buf, report.Sessions, window, width, true); err != nil {
		return cardsView + "\n\n" + fmt.Sprintf("Failed to render trends: %v", err)
	}
	best := make([]string, 0, len(report.Best)+1)
	best = append(best, cardTitleStyle.Render("Best sessions"))
	for _, s := range report.Best {
		best = append(best, fmt.Sprintf("%3d  %s", s.ConsistencyScore, s.Name))
	}
	return strings.TrimRight(cardsView+"\n\n"+buf.String()+strings.Join(best, "\n"), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newSessionTable() table.Model {
	t := table.New(
		table.WithColumns(sessionColumns()),
		table.WithHeight(1),
	)
	t.SetStyles(sessionTableStyles())
	return t
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Date", Width: 16},
		{Title: "Consistency", Width: 11},
		{Title: "Avg Interval", Width: 12},
		{Title: "Clicks", Width: 6},
		{Title: "Duration", Width: 8},
	}
}

func sessionRows(sessions []model.Session, nameWidth int, loc *time.Location) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row{
			stats.TruncateName(s.Name, nameWidth),
			s.Started().In(loc).Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.ConsistencyScore),
			fmt.Sprintf("%d ms", s.RoundedInterval()),
			fmt.Sprintf("%d", s.ClickCount),
			stats.FormatDuration(s.Duration()),
		})
	}
	return rows
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) selected() (model.Session, bool) {
	if m.activeTab != tabSessions || len(m.rows) == 0 {
		return model.Session{}, false
	}
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return model.Session{}, false
	}
	return m.rows[idx], true
}

func (m *Model) startRename() (tea.Model, tea.Cmd) {
	s, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.renameMode = true
	m.renameID = s.ID
	m.renameInput.SetValue(s.Name)
	m.renameInput.CursorEnd()
	return m, m.renameInput.Focus()
}

func (m *Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endRename()
		return m, nil
	case tea.KeyEnter:
		m.applyRename()
		m.endRename()
		return m, nil
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m *Model) endRename() {
	m.renameMode = false
	m.renameID = ""
	m.renameInput.Blur()
}

func (m *Model) applyRename() {
	name := strings.TrimSpace(m.renameInput.Value())
	current, ok := m.selected()
	if !ok || current.ID != m.renameID || name == "" || name == current.Name {
		return
	}
	if err := m.archive.Rename(m.renameID, name); err != nil {
		m.logger.Error("failed to rename session", "id", m.renameID, "err", err)
		m.setStatus(fmt.Sprintf("rename failed: %v", err), true)
	} else {
		m.setStatus(fmt.Sprintf("Renamed to %s", name), false)
	}
	m.refreshReport()
}

func (m *Model) deleteSelected() {
	s, ok := m.selected()
	if !ok {
		return
	}
	if err := m.archive.Delete(s.ID); err != nil {
		m.logger.Error("failed to delete session", "id", s.ID, "err", err)
		m.setStatus(fmt.Sprintf("delete failed: %v", err), true)
	} else {
		m.setStatus(fmt.Sprintf("Deleted %s", s.Name), false)
	}
	m.refreshReport()
}

func (m *Model) copySelected() {
	s, ok := m.selected()
	if !ok {
		return
	}
	if err := m.copyText(s.ClipboardTextIn(m.loc)); err != nil {
		m.logger.Warn("failed to copy session", "id", s.ID, "err", err)
		m.setStatus(fmt.Sprintf("copy failed: %v", err), true)
		return
	}
	m.setStatus("Copied to clipboard", false)
}

func (m *Model) renderRenameModal() string {
	body := []string{
		cardValueStyle.Render("Rename Session"),
		m.renameInput.View(),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func nextTrendWindow(n int) int {
	if n < 5 {
		return 5
	}
	if n%5 == 0 {
		return n + 5
	}
	return ((n / 5) + 1) * 5
}

func prevTrendWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func modalWidth(width int) int {
	return maxInt(40, minInt(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width)
	w -= 6 // 2 border + 4 padding
	if w < 10 {
		return 10
	}
	return w
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
