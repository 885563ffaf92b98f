package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/stats"
	"github.com/verte-zerg/afkstats/internal/statsui"
)

const defaultTrendWindow = 3

const (
	exportText = "text"
	exportLua  = "lua"
)

var (
	reportSince  string
	reportLast   int
	reportWindow int
	statsColor   bool

	exportFormat string
	exportID     string
	exportCopy   bool
)

func addReportFlags(cmd *cobra.Command, withWindow bool) {
	cmd.Flags().StringVar(&reportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&reportLast, "last", 0, "limit to last N sessions")
	if withWindow {
		cmd.Flags().IntVar(&reportWindow, "window", defaultTrendWindow, "moving average window for trends")
	}
}

func reportConfig() (model.ReportConfig, error) {
	since, err := parseSince(reportSince)
	if err != nil {
		return model.ReportConfig{}, err
	}
	if reportLast < 0 {
		return model.ReportConfig{}, fmt.Errorf("--last must be >= 0")
	}
	window := reportWindow
	if window < 1 {
		window = 1
	}
	return model.ReportConfig{Since: since, Last: reportLast, TrendWindow: window}, nil
}

func parseSince(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse, rename and delete archived sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	addReportFlags(cmd, true)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reportCfg, err := reportConfig()
	if err != nil {
		return err
	}
	logger, closeLog := tuiLogger(cfg)
	defer closeLog()

	mgr, closeHistory, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	m := statsui.NewModel(mgr, reportCfg, cfg.NameWidth, statsui.WithLogger(logger))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run history TUI: %w", err)
	}
	return nil
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print archived sessions as a table",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	addReportFlags(cmd, false)
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reportCfg, err := reportConfig()
	if err != nil {
		return err
	}
	mgr, closeHistory, err := openHistory(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer closeHistory()

	report := stats.BuildReport(mgr, reportCfg)
	out := cmd.OutOrStdout()
	if len(report.Sessions) == 0 {
		_, err := fmt.Fprintln(out, "No sessions recorded.")
		return err
	}
	return stats.RenderSessionTable(out, report.Sessions, cfg.NameWidth, time.Local)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a summary and trends of archived sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addReportFlags(cmd, true)
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colored trends")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reportCfg, err := reportConfig()
	if err != nil {
		return err
	}
	mgr, closeHistory, err := openHistory(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer closeHistory()

	report := stats.BuildReport(mgr, reportCfg)
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	if err := stats.RenderTrends(out, report.Sessions, reportCfg.TrendWindow, 0, statsColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(out, "Best sessions"); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderSessionTable(out, report.Best, cfg.NameWidth, time.Local)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print sessions as clipboard text or Lua table rows",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	addReportFlags(cmd, false)
	cmd.Flags().StringVar(&exportFormat, "format", exportText, "output format (text or lua)")
	cmd.Flags().StringVar(&exportID, "id", "", "export a single session (id or unique prefix)")
	cmd.Flags().BoolVar(&exportCopy, "copy", false, "also copy the output to the clipboard")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(strings.TrimSpace(exportFormat))
	if format != exportText && format != exportLua {
		return fmt.Errorf("unknown --format %q (use %s or %s)", exportFormat, exportText, exportLua)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	reportCfg, err := reportConfig()
	if err != nil {
		return err
	}
	mgr, closeHistory, err := openHistory(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer closeHistory()

	sessions := stats.BuildReport(mgr, reportCfg).Sessions
	if exportID != "" {
		id, err := resolveID(mgr.Sessions(), exportID)
		if err != nil {
			return err
		}
		s, _ := mgr.Get(id)
		sessions = []model.Session{s}
	}
	text := exportLines(sessions, format, time.Local)
	if text == "" {
		return nil
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if exportCopy {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
	}
	return nil
}

func exportLines(sessions []model.Session, format string, loc *time.Location) string {
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		if format == exportLua {
			lines = append(lines, s.TableRow())
		} else {
			lines = append(lines, s.ClipboardTextIn(loc))
		}
	}
	return strings.Join(lines, "\n")
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename an archived session",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runRenameCmd,
	}
}

func runRenameCmd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, closeHistory, err := openHistory(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer closeHistory()

	id, err := resolveID(mgr.Sessions(), args[0])
	if err != nil {
		return err
	}
	if err := mgr.Rename(id, name); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", stats.ShortID(id), name)
	return err
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived session",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, closeHistory, err := openHistory(cfg, cliLogger(cfg))
	if err != nil {
		return err
	}
	defer closeHistory()

	id, err := resolveID(mgr.Sessions(), args[0])
	if err != nil {
		return err
	}
	if err := mgr.Delete(id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", stats.ShortID(id))
	return err
}

// resolveID accepts a full id or a prefix matching exactly one session.
func resolveID(sessions []model.Session, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("session id must not be empty")
	}
	var matches []string
	for _, s := range sessions {
		if s.ID == prefix {
			return s.ID, nil
		}
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d sessions", prefix, len(matches))
	}
}
