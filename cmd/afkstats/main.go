// Package main provides the CLI entrypoint for afkstats.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/afkstats/internal/clicks"
	"github.com/verte-zerg/afkstats/internal/config"
	"github.com/verte-zerg/afkstats/internal/history"
	"github.com/verte-zerg/afkstats/internal/logging"
	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/store"
	"github.com/verte-zerg/afkstats/internal/tracker"
	"github.com/verte-zerg/afkstats/internal/tui"
)

var (
	configPath   string
	flagBackend  string
	flagPath     string
	flagMax      int
	flagLogLevel string

	trackPollMs    int
	trackShowPanel bool
	trackNameWidth int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "afkstats",
		Short:         "Click-session consistency tracker",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTrackerCmd,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	pf.StringVar(&flagBackend, "backend", config.DefaultBackend, "history backend (sqlite or file)")
	pf.StringVar(&flagPath, "history-path", "", "history database or file path")
	pf.IntVar(&flagMax, "max-sessions", config.DefaultMaxSessions, "number of sessions kept in the archive")
	pf.StringVar(&flagLogLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.Flags().IntVar(&trackPollMs, "poll-ms", config.DefaultPollMs, "live statistics refresh interval in milliseconds")
	rootCmd.Flags().BoolVar(&trackShowPanel, "show-panel", config.DefaultShowPanel, "show the recent sessions panel")
	rootCmd.Flags().IntVar(&trackNameWidth, "name-width", config.DefaultNameWidth, "max session name width")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDeleteCmd())

	return rootCmd
}

// loadConfig merges built-in defaults, the config file and explicit flags.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := fileCfg.Apply(config.Default())
	if cmd.Flags().Changed("poll-ms") {
		cfg.PollInterval = time.Duration(trackPollMs) * time.Millisecond
	}
	applyFlag(cmd, "backend", &cfg.Backend, strings.ToLower(strings.TrimSpace(flagBackend)))
	applyFlag(cmd, "history-path", &cfg.HistoryPath, flagPath)
	applyFlag(cmd, "max-sessions", &cfg.MaxSessions, flagMax)
	applyFlag(cmd, "log-level", &cfg.LogLevel, strings.ToLower(strings.TrimSpace(flagLogLevel)))
	applyFlag(cmd, "show-panel", &cfg.ShowPanel, trackShowPanel)
	applyFlag(cmd, "name-width", &cfg.NameWidth, trackNameWidth)
	if err := config.Validate(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func applyFlag[T any](cmd *cobra.Command, name string, target *T, value T) {
	if flag := cmd.Flags().Lookup(name); flag == nil || !flag.Changed {
		return
	}
	*target = value
}

// openHistory opens the configured backend. The returned func releases it.
func openHistory(cfg model.Config, logger *slog.Logger) (*history.Manager, func(), error) {
	path := config.ResolveHistoryPath(cfg)
	opts := []history.Option{
		history.WithLogger(logger),
		history.WithMaxSessions(cfg.MaxSessions),
	}
	switch cfg.Backend {
	case config.BackendFile:
		f := store.NewFile(path)
		logger.Debug("using file history", "path", f.Path())
		return history.New(f, opts...), func() {}, nil
	default:
		st, err := store.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open db: %w", err)
		}
		logger.Debug("using sqlite history", "path", path)
		closeFn := func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}
		return history.New(st.Blob(store.HistoryGroup, store.HistoryKey), opts...), closeFn, nil
	}
}

func cliLogger(cfg model.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		logErrf("%v; using info\n", err)
	}
	return logging.New(os.Stderr, level)
}

// tuiLogger writes to the log file so the alternate screen stays clean.
func tuiLogger(cfg model.Config) (*slog.Logger, func()) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		logErrf("%v; using info\n", err)
	}
	logger, f, err := logging.NewFile(config.DefaultLogPath(), level)
	if err != nil {
		logErrf("%v; logging disabled\n", err)
		return logging.New(io.Discard, level), func() {}
	}
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			_ = cerr
		}
	}
}

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
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

	rec := clicks.NewRecorder()
	tr := tracker.New(rec, mgr)
	m := tui.NewModel(cfg, tr, rec, mgr, logger)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := ensureConfigFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# afkstats configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# poll-ms = %d            # Live statistics refresh interval

[history]
# max-sessions = %d         # Sessions kept in the archive
# backend = %q        # "sqlite" or "file"
# path = ""               # Overrides the default database/file path

[display]
# show-panel = %t        # Show recent sessions under the live cards
# name-width = %d           # Max session name width in tables

[log]
# level = %q            # debug, info, warn or error
`,
		config.DefaultPollMs,
		config.DefaultMaxSessions,
		config.DefaultBackend,
		config.DefaultShowPanel,
		config.DefaultNameWidth,
		config.DefaultLogLevel,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
