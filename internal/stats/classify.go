package stats

import (
	"math"
	"sort"
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"
)

// Classification thresholds.
const (
	ProblemAccuracy   = 0.6
	ProblemMinTotal   = 3
	MasteredAccuracy  = 0.8
	MasteredMinTotal  = 5
	EncourageAccuracy = 0.5
)

// ItemStat is a derived view of one ledger record.
type ItemStat struct {
	Kind        model.Kind
	Key         string
	Accuracy    float64
	Correct     int
	Total       int
	LastAttempt *time.Time
	Metadata    model.Metadata
}

func itemStat(kind model.Kind, entry model.ItemEntry) (ItemStat, bool) {
	acc, ok := entry.Record.Accuracy()
	if !ok {
		return ItemStat{}, false
	}
	rec := entry.Record.Clone()
	return ItemStat{
		Kind:        kind,
		Key:         entry.Key,
		Accuracy:    acc,
		Correct:     rec.Correct,
		Total:       rec.Total,
		LastAttempt: rec.LastAttempt,
		Metadata:    rec.Metadata,
	}, true
}

// IsProblem reports whether a record counts as a problem item.
func IsProblem(rec model.AccuracyRecord) bool {
	acc, ok := rec.Accuracy()
	return ok && rec.Total >= ProblemMinTotal && acc < ProblemAccuracy
}

// IsMastered reports whether a record counts as mastered.
func IsMastered(rec model.AccuracyRecord) bool {
	acc, ok := rec.Accuracy()
	return ok && rec.Total >= MasteredMinTotal && acc >= MasteredAccuracy
}

// ProblemItems returns problem items of a kind, worst first.
func ProblemItems(snap model.LedgerSnapshot, kind model.Kind) []ItemStat {
	out := filterItems(snap, kind, IsProblem)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Accuracy < out[j].Accuracy
	})
	return out
}

// MasteredItems returns mastered items of a kind, best first.
func MasteredItems(snap model.LedgerSnapshot, kind model.Kind) []ItemStat {
	out := filterItems(snap, kind, IsMastered)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Accuracy > out[j].Accuracy
	})
	return out
}

func filterItems(snap model.LedgerSnapshot, kind model.Kind, keep func(model.AccuracyRecord) bool) []ItemStat {
	var out []ItemStat
	for _, entry := range snap.Items[kind] {
		if !keep(entry.Record) {
			continue
		}
		if stat, ok := itemStat(kind, entry); ok {
			out = append(out, stat)
		}
	}
	return out
}

// AccuracyOf returns the stat for an item, absent when it was never attempted.
func AccuracyOf(snap model.LedgerSnapshot, kind model.Kind, key string) (ItemStat, bool) {
	rec, ok := snap.Find(kind, key)
	if !ok {
		return ItemStat{}, false
	}
	return itemStat(kind, model.ItemEntry{Key: key, Record: rec})
}

// KindAccuracy aggregates correct/total over every item of a kind.
func KindAccuracy(snap model.LedgerSnapshot, kind model.Kind) (accuracy float64, total int) {
	correct := 0
	for _, entry := range snap.Items[kind] {
		correct += entry.Record.Correct
		total += entry.Record.Total
	}
	if total == 0 {
		return 0, 0
	}
	return float64(correct) / float64(total), total
}

// ShouldEncourage reports whether an item is going badly enough to deserve extra support.
func ShouldEncourage(snap model.LedgerSnapshot, kind model.Kind, key string) bool {
	stat, ok := AccuracyOf(snap, kind, key)
	return ok && stat.Accuracy < EncourageAccuracy
}

// OverallStats aggregates the whole ledger.
type OverallStats struct {
	TotalAccuracy     float64
	TotalAttempts     int
	TotalCorrect      int
	PracticedPerKind  map[model.Kind]int
	SessionsCompleted int
	DaysActive        int
	// MasteredCount and ProblemCount count sounds.
	MasteredCount   int
	ProblemCount    int
	MasteredPerKind map[model.Kind]int
	ProblemPerKind  map[model.Kind]int
}

// Overall computes aggregate statistics as of now.
func Overall(snap model.LedgerSnapshot, now time.Time) OverallStats {
	out := OverallStats{
		TotalAttempts:     snap.TotalAttempts,
		TotalCorrect:      snap.TotalCorrect,
		PracticedPerKind:  map[model.Kind]int{},
		SessionsCompleted: len(snap.SessionHistory),
		DaysActive:        DaysActive(snap.StartDate, now),
		MasteredPerKind:   map[model.Kind]int{},
		ProblemPerKind:    map[model.Kind]int{},
	}
	if snap.TotalAttempts > 0 {
		out.TotalAccuracy = float64(snap.TotalCorrect) / float64(snap.TotalAttempts)
	}
	for _, kind := range model.Kinds {
		out.PracticedPerKind[kind] = len(snap.Items[kind])
		for _, entry := range snap.Items[kind] {
			if IsMastered(entry.Record) {
				out.MasteredPerKind[kind]++
			}
			if IsProblem(entry.Record) {
				out.ProblemPerKind[kind]++
			}
		}
	}
	out.MasteredCount = out.MasteredPerKind[model.KindSound]
	out.ProblemCount = out.ProblemPerKind[model.KindSound]
	return out
}

// DaysActive counts elapsed days since start, rounded up, at least 1.
func DaysActive(start, now time.Time) int {
	if start.IsZero() || !now.After(start) {
		return 1
	}
	days := int(math.Ceil(now.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
