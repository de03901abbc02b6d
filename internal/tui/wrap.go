package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/soundcheck/internal/model"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

var soundColors = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#FF6B6B"),
	"blue":   lipgloss.Color("#5B8DEF"),
	"green":  lipgloss.Color("#52C41A"),
	"orange": lipgloss.Color("#FA8C16"),
	"pink":   lipgloss.Color("#F759AB"),
	"purple": lipgloss.Color("#9254DE"),
	"yellow": lipgloss.Color("#FADB14"),
}

func styleText(text string, style lipgloss.Style) []styledRune {
	out := make([]styledRune, 0, len(text))
	for _, r := range text {
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

// buildSoundRunes renders each sound's letters in its color. The sound at
// highlight is underlined; a negative highlight marks none.
func buildSoundRunes(word model.Word, highlight int) []styledRune {
	out := make([]styledRune, 0, len(word.Sounds))
	for i, snd := range word.Sounds {
		style := pendingStyle
		if c, ok := soundColors[snd.Color]; ok {
			style = lipgloss.NewStyle().Foreground(c).Bold(true)
		}
		if i == highlight {
			style = style.Underline(true)
		}
		out = append(out, styledRune{
			s:     style.Render(snd.Letter),
			width: runewidth.StringWidth(snd.Letter),
		})
	}
	return out
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapText(text string, style lipgloss.Style, width int) string {
	return wrapStyledRunes(styleText(text, style), width)
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
