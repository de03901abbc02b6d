// Package stats classifies ledger items and renders progress reports.
package stats

import (
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"
)

// DefaultRecommendationLimit caps each recommendation list.
const DefaultRecommendationLimit = 3

// Recommendations lists what to practice next.
type Recommendations struct {
	ProblemSounds   []ItemStat
	ProblemPairs    []ItemStat
	HasProblemAreas bool
}

// Summary is the full progress picture shown by the stats command.
type Summary struct {
	Overall         OverallStats
	Recommendations Recommendations
	TopMastered     []ItemStat
}

// Recommend returns the worst sounds and pairs, up to limit each.
func Recommend(snap model.LedgerSnapshot, limit int) Recommendations {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	sounds := firstN(ProblemItems(snap, model.KindSound), limit)
	pairs := firstN(ProblemItems(snap, model.KindPair), limit)
	return Recommendations{
		ProblemSounds:   sounds,
		ProblemPairs:    pairs,
		HasProblemAreas: len(sounds) > 0 || len(pairs) > 0,
	}
}

// Summarize builds a Summary as of now.
func Summarize(snap model.LedgerSnapshot, now time.Time) Summary {
	return Summary{
		Overall:         Overall(snap, now),
		Recommendations: Recommend(snap, DefaultRecommendationLimit),
		TopMastered:     firstN(MasteredItems(snap, model.KindSound), DefaultRecommendationLimit),
	}
}

func firstN(items []ItemStat, n int) []ItemStat {
	if n <= 0 || len(items) <= n {
		return items
	}
	return items[:n]
}
