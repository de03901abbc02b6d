package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Numeric columns are right aligned.
type column struct {
	title string
	right bool
}

// formatTable lays rows out in fixed-width columns measured in terminal
// cells, so IPA symbols and combining marks line up.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	lines := []string{joinCells(cols, widths, header)}
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		if c.right {
			cells[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}
