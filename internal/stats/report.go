package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"
)

// SnapshotLoader reads a persisted ledger.
type SnapshotLoader interface {
	LoadLedger(ctx context.Context, user string) (model.LedgerSnapshot, bool, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Summary  Summary
	Problems map[model.Kind][]ItemStat
	Mastered map[model.Kind][]ItemStat
	Sessions []model.SessionEntry
}

// BuildReport loads a user's ledger and prepares it for rendering.
func BuildReport(ctx context.Context, loader SnapshotLoader, user string, now time.Time) (Report, error) {
	snap, _, err := loader.LoadLedger(ctx, user)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load ledger: %w", err)
	}
	return NewReport(snap, now), nil
}

// NewReport derives a Report from a snapshot.
func NewReport(snap model.LedgerSnapshot, now time.Time) Report {
	r := Report{
		Summary:  Summarize(snap, now),
		Problems: map[model.Kind][]ItemStat{},
		Mastered: map[model.Kind][]ItemStat{},
		Sessions: snap.SessionHistory,
	}
	for _, kind := range model.Kinds {
		r.Problems[kind] = ProblemItems(snap, kind)
		r.Mastered[kind] = MasteredItems(snap, kind)
	}
	return r
}

// Render writes the whole report.
func (r Report) Render(w io.Writer, curveWindow, width int) error {
	if err := RenderOverview(w, r.Summary); err != nil {
		return err
	}
	for _, kind := range model.Kinds {
		if err := RenderItemTable(w, fmt.Sprintf("Needs practice (%ss)", kind), r.Problems[kind]); err != nil {
			return err
		}
	}
	for _, kind := range model.Kinds {
		if err := RenderItemTable(w, fmt.Sprintf("Mastered (%ss)", kind), r.Mastered[kind]); err != nil {
			return err
		}
	}
	return RenderSessionCurve(w, r.Sessions, curveWindow, width)
}
