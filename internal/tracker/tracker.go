// Package tracker coordinates a tracking session from start to archive.
package tracker

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/afkstats/internal/model"
	"github.com/verte-zerg/afkstats/internal/stats"
)

const defaultNameLayout = "2006-01-02 15:04"

// Source supplies the raw click timestamps of the current session.
type Source interface {
	Reset()
	Snapshot() []int64
	Len() int
}

// Archive receives completed sessions.
type Archive interface {
	Add(session model.Session) error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(t *Tracker) {
		if newID != nil {
			t.newID = newID
		}
	}
}

// WithLocation sets the time zone used for default session names.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// Tracker turns a stream of clicks into archived sessions.
type Tracker struct {
	source  Source
	archive Archive
	now     func() time.Time
	newID   func() string
	loc     *time.Location

	tracking  bool
	startedAt time.Time
}

// New constructs a Tracker.
func New(source Source, archive Archive, opts ...Option) *Tracker {
	t := &Tracker{
		source:  source,
		archive: archive,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start clears the click source and begins a session. Starting while
// already tracking restarts the session.
func (t *Tracker) Start() {
	t.source.Reset()
	t.startedAt = t.now()
	t.tracking = true
}

// Stop ends the session, archives it and returns it. When no session is
// active it returns false and does nothing. The tracker is idle afterwards
// even if archiving fails; the archive error is returned with the session.
func (t *Tracker) Stop() (model.Session, bool, error) {
	if !t.tracking {
		return model.Session{}, false, nil
	}
	endedAt := t.now()
	timestamps := t.source.Snapshot()
	session := model.Session{
		ID:               t.newID(),
		Name:             DefaultName(t.startedAt, t.loc),
		StartTime:        t.startedAt.UnixMilli(),
		EndTime:          endedAt.UnixMilli(),
		ClickCount:       len(timestamps),
		ConsistencyScore: stats.Consistency(timestamps),
		AvgInterval:      stats.AverageInterval(timestamps),
	}
	if session.EndTime < session.StartTime {
		session.EndTime = session.StartTime
	}
	t.tracking = false
	err := t.archive.Add(session)
	return session, true, err
}

// Tracking reports whether a session is active.
func (t *Tracker) Tracking() bool {
	return t.tracking
}

// StartedAt returns the start of the active session, or the zero time.
func (t *Tracker) StartedAt() time.Time {
	if !t.tracking {
		return time.Time{}
	}
	return t.startedAt
}

// Elapsed returns how long the active session has been running.
func (t *Tracker) Elapsed() time.Duration {
	if !t.tracking {
		return 0
	}
	return t.now().Sub(t.startedAt)
}

// CurrentConsistency scores the clicks recorded so far.
func (t *Tracker) CurrentConsistency() int {
	return stats.Consistency(t.source.Snapshot())
}

// CurrentAverageInterval averages the click intervals recorded so far.
func (t *Tracker) CurrentAverageInterval() float64 {
	return stats.AverageInterval(t.source.Snapshot())
}

// CurrentIntervals returns the gaps between the clicks recorded so far.
func (t *Tracker) CurrentIntervals() []float64 {
	return stats.Intervals(t.source.Snapshot())
}

// ClickCount returns the number of clicks recorded so far.
func (t *Tracker) ClickCount() int {
	return t.source.Len()
}

// DefaultName builds the initial session name from its start time.
func DefaultName(start time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return "Session " + start.In(loc).Format(defaultNameLayout)
}
