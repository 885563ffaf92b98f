// Package model defines shared data structures.
package model

import "time"

// Config defines tracker and archive settings.
type Config struct {
	PollInterval time.Duration
	MaxSessions  int
	Backend      string
	HistoryPath  string
	ShowPanel    bool
	NameWidth    int
	LogLevel     string
}

// ReportConfig defines filters and options for history output.
type ReportConfig struct {
	Since       *time.Time
	Last        int
	TrendWindow int
}
