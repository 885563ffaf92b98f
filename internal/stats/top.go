package stats

import (
	"sort"

	"github.com/verte-zerg/afkstats/internal/model"
)

// TopByConsistency returns up to n sessions ordered by consistency score,
// ties broken by more clicks and then by the later start.
func TopByConsistency(sessions []model.Session, n int) []model.Session {
	if n <= 0 || len(sessions) == 0 {
		return nil
	}
	items := make([]model.Session, len(sessions))
	copy(items, sessions)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].ConsistencyScore != items[j].ConsistencyScore {
			return items[i].ConsistencyScore > items[j].ConsistencyScore
		}
		if items[i].ClickCount != items[j].ClickCount {
			return items[i].ClickCount > items[j].ClickCount
		}
		return items[i].StartTime > items[j].StartTime
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
