package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/soundcheck/internal/ledger"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "soundcheck.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	l := ledger.New()
	record(t, l, model.KindSound, "/θ/", 1, 4)
	record(t, l, model.KindSound, "/m/", 5, 5)
	record(t, l, model.KindPair, "thin-fin", 0, 3)
	for i := 0; i < 3; i++ {
		if _, err := l.RecordSession(model.ModePairs, model.SessionStats{Attempts: 4, Correct: i + 1}); err != nil {
			t.Fatalf("record session: %v", err)
		}
	}
	if err := st.SaveLedger(ctx, "ana", l.Snapshot()); err != nil {
		t.Fatalf("save ledger: %v", err)
	}

	report, err := BuildReport(ctx, st, "ana", time.Now())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(report.Sessions))
	}
	if len(report.Problems[model.KindSound]) != 1 || report.Problems[model.KindSound][0].Key != "/θ/" {
		t.Fatalf("unexpected problem sounds: %+v", report.Problems[model.KindSound])
	}
	if len(report.Mastered[model.KindSound]) != 1 {
		t.Fatalf("expected 1 mastered sound, got %d", len(report.Mastered[model.KindSound]))
	}
	if !report.Summary.Recommendations.HasProblemAreas {
		t.Fatalf("expected problem areas")
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Overview", "Needs practice (sounds)", "Needs practice (pairs)", "Mastered (sounds)", "Session accuracy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBuildReportEmptyUser(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "soundcheck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	report, err := BuildReport(context.Background(), st, "nobody", time.Now())
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf, 5, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No practice recorded yet.") {
		t.Fatalf("expected empty notice, got:\n%s", buf.String())
	}
}
