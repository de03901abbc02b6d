package session

import (
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/stats"
)

// pools splits catalog items into problem, mastered and fresh sets.
// Fresh is everything never attempted, or the neutral items when all were attempted.
func pools[T any](items []T, key func(T) string, snap model.LedgerSnapshot, kind model.Kind) (problem, mastered, fresh []T) {
	byKey := make(map[string]T, len(items))
	for _, item := range items {
		byKey[key(item)] = item
	}
	classified := map[string]bool{}
	for _, stat := range stats.ProblemItems(snap, kind) {
		if item, ok := byKey[stat.Key]; ok {
			problem = append(problem, item)
			classified[stat.Key] = true
		}
	}
	for _, stat := range stats.MasteredItems(snap, kind) {
		if item, ok := byKey[stat.Key]; ok {
			mastered = append(mastered, item)
			classified[stat.Key] = true
		}
	}

	var neutral []T
	for _, item := range items {
		k := key(item)
		rec, attempted := snap.Find(kind, k)
		switch {
		case !attempted || rec.Total == 0:
			fresh = append(fresh, item)
		case !classified[k]:
			neutral = append(neutral, item)
		}
	}
	if len(fresh) == 0 {
		fresh = neutral
	}
	return problem, mastered, fresh
}
