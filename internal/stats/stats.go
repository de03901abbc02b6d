package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"
)

const sparkChars = " .:-=+*#%@"

// SessionAccuracy returns the per-session accuracy series, oldest first.
func SessionAccuracy(history []model.SessionEntry) []float64 {
	out := make([]float64, 0, len(history))
	for _, entry := range history {
		acc := 0.0
		if entry.Stats.Attempts > 0 {
			acc = float64(entry.Stats.Correct) / float64(entry.Stats.Attempts)
		}
		out = append(out, acc)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderOverview prints the headline numbers and recommendations.
func RenderOverview(w io.Writer, sum Summary) error {
	o := sum.Overall
	lines := []string{
		"Overview",
		fmt.Sprintf("Attempts: %d", o.TotalAttempts),
		fmt.Sprintf("Accuracy: %s", percent(o.TotalAccuracy)),
		fmt.Sprintf("Sessions: %d", o.SessionsCompleted),
		fmt.Sprintf("Days active: %d", o.DaysActive),
		fmt.Sprintf("Practiced: %d sounds, %d pairs, %d words",
			o.PracticedPerKind[model.KindSound], o.PracticedPerKind[model.KindPair], o.PracticedPerKind[model.KindWord]),
		fmt.Sprintf("Mastered sounds: %d", o.MasteredCount),
		fmt.Sprintf("Sounds to practice: %d", o.ProblemCount),
	}
	if o.TotalAttempts == 0 {
		lines = append(lines, "", "No practice recorded yet.")
	}
	if len(sum.TopMastered) > 0 {
		lines = append(lines, "", "Strongest sounds: "+joinKeys(sum.TopMastered))
	}
	if sum.Recommendations.HasProblemAreas {
		lines = append(lines, "", "Recommended focus:")
		if len(sum.Recommendations.ProblemSounds) > 0 {
			lines = append(lines, "  sounds: "+joinKeys(sum.Recommendations.ProblemSounds))
		}
		if len(sum.Recommendations.ProblemPairs) > 0 {
			lines = append(lines, "  pairs:  "+joinKeys(sum.Recommendations.ProblemPairs))
		}
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderItemTable prints a per-item accuracy table.
func RenderItemTable(w io.Writer, title string, items []ItemStat) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	cols := []column{
		{title: "Item"},
		{title: "Accuracy", right: true},
		{title: "Correct", right: true},
		{title: "Total", right: true},
		{title: "Last practiced"},
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		last := "-"
		if item.LastAttempt != nil {
			last = item.LastAttempt.Local().Format(time.DateOnly)
		}
		rows = append(rows, []string{
			item.Key,
			percent(item.Accuracy),
			fmt.Sprintf("%d", item.Correct),
			fmt.Sprintf("%d", item.Total),
			last,
		})
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSessionCurve prints a sparkline of session accuracy, smoothed over window sessions.
func RenderSessionCurve(w io.Writer, history []model.SessionEntry, window, width int) error {
	if len(history) == 0 {
		return nil
	}
	if width > 0 && len(history) > width {
		history = history[len(history)-width:]
	}
	values := MovingAverage(SessionAccuracy(history), window)
	last := values[len(values)-1]
	if _, err := fmt.Fprintf(w, "Session accuracy (last %d, window %d)\n", len(values), max(window, 1)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s] %s\n\n", Sparkline(values), percent(last)); err != nil {
		return err
	}
	return nil
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func joinKeys(items []ItemStat) string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, fmt.Sprintf("%s (%s)", item.Key, percent(item.Accuracy)))
	}
	return strings.Join(keys, ", ")
}
