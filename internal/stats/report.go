package stats

import (
	"github.com/verte-zerg/afkstats/internal/model"
)

// Lister supplies archived sessions, oldest first.
type Lister interface {
	Sessions() []model.Session
}

// Report contains precomputed data for history rendering.
type Report struct {
	Sessions []model.Session
	Summary  Summary
	Best     []model.Session
}

const bestCount = 3

// BuildReport filters the archive by cfg and prepares rendering data.
func BuildReport(src Lister, cfg model.ReportConfig) Report {
	all := src.Sessions()
	sessions := make([]model.Session, 0, len(all))
	for _, s := range all {
		if cfg.Since != nil && s.Started().Before(*cfg.Since) {
			continue
		}
		sessions = append(sessions, s)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return Report{
		Sessions: sessions,
		Summary:  Summarize(sessions),
		Best:     TopByConsistency(sessions, bestCount),
	}
}
