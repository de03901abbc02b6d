// Package tui provides the Bubble Tea practice interface.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/ledger"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/session"
	"github.com/verte-zerg/soundcheck/internal/speech"
	statsPkg "github.com/verte-zerg/soundcheck/internal/stats"
)

// Model implements the Bubble Tea practice UI.
type Model struct {
	session  *session.Session
	ledger   *ledger.Ledger
	captions *speech.Recorder
	logger   *slog.Logger
	keys     KeyMap
	help     help.Model

	width  int
	height int

	round     session.Round
	hasRound  bool
	built     []string
	highlight int
	hint      string
	outcome   *session.Outcome
	notice    string
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	supportStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	choiceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	captionStyle   = pendingStyle.Italic(true)
	highlightStyle = choiceStyle.Underline(true)
)

// Option configures the Model.
type Option func(*Model)

// WithCaptions shows the last spoken text, for use without a speech engine.
func WithCaptions(rec *speech.Recorder) Option {
	return func(m *Model) {
		m.captions = rec
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// NewModel constructs a practice TUI model and loads the first round.
func NewModel(sess *session.Session, l *ledger.Ledger, opts ...Option) *Model {
	m := &Model{
		session:   sess,
		ledger:    l,
		logger:    slog.Default(),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		highlight: -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.next()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finish()
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case !m.hasRound:
		if key.Matches(msg, m.keys.Next, m.keys.Submit) {
			m.next()
		}
	case key.Matches(msg, m.keys.Play):
		m.play()
	case key.Matches(msg, m.keys.Compare):
		if err := m.session.Compare(); err != nil {
			m.notice = "Compare works with word pairs."
		}
	case key.Matches(msg, m.keys.Hint):
		if hint, ok := m.session.Hint(); ok {
			m.hint = hint
		} else {
			m.notice = "Give it a try first. Hints unlock after an attempt."
		}
	case key.Matches(msg, m.keys.Choose):
		idx, err := strconv.Atoi(msg.String())
		if err == nil {
			m.choose(idx - 1)
		}
	case key.Matches(msg, m.keys.Undo):
		if len(m.built) > 0 {
			m.built = m.built[:len(m.built)-1]
		}
	case key.Matches(msg, m.keys.Submit):
		m.submit()
	case key.Matches(msg, m.keys.Retry):
		m.retry()
	case key.Matches(msg, m.keys.Next):
		m.next()
	}
	return nil
}

func (m *Model) play() {
	var err error
	if m.session.Played() {
		err = m.session.Replay()
	} else {
		err = m.session.Play()
	}
	if err != nil {
		m.logger.Warn("failed to play stimulus", "error", err)
	}
}

func (m *Model) choose(idx int) {
	if m.session.Mode() == model.ModeStructure {
		if err := m.session.SoundOut(idx); err == nil {
			m.highlight = idx
		}
		return
	}
	if idx < 0 || idx >= len(m.round.Choices) {
		return
	}
	switch m.session.Mode() {
	case model.ModePairs:
		m.answer(session.Response{Choice: m.round.Choices[idx]})
	case model.ModeSyllables:
		m.answer(session.Response{Count: idx + 1})
	case model.ModeSounds:
		if m.session.State() == session.StateAwaitingResponse {
			m.built = append(m.built, m.round.Choices[idx])
		} else if !m.session.Played() {
			m.notice = "Press space to hear the word first."
		}
	}
}

func (m *Model) submit() {
	switch m.session.State() {
	case session.StateIdle:
		m.next()
		return
	case session.StateAwaitingRetry:
		m.retry()
		return
	}
	switch m.session.Mode() {
	case model.ModeSounds:
		m.answer(session.Response{Sounds: append([]string(nil), m.built...)})
	case model.ModeStructure:
		m.answer(session.Response{Done: true})
	}
}

func (m *Model) answer(resp session.Response) {
	out, ok := m.session.Answer(resp)
	if !ok {
		if !m.session.Played() {
			m.notice = "Press space to hear the word first."
		}
		return
	}
	m.outcome = &out
	m.hint = ""
	if !out.Correct {
		m.built = nil
	}
}

func (m *Model) retry() {
	if m.session.TryAgain() {
		m.outcome = nil
		m.built = nil
	}
}

func (m *Model) next() {
	m.built = nil
	m.hint = ""
	m.outcome = nil
	m.highlight = -1
	round, err := m.session.Next()
	if err != nil {
		m.hasRound = false
		if errors.Is(err, common.ErrNoContent) {
			m.notice = "Nothing to practice at this level. Try another mode or difficulty."
			return
		}
		m.logger.Error("failed to select round", "error", err)
		m.notice = "Could not load the next item."
		return
	}
	m.round = round
	m.hasRound = true
}

func (m *Model) finish() {
	entry, recorded, err := m.session.Finish()
	if err != nil {
		m.logger.Error("failed to finish session", "error", err)
		return
	}
	if recorded {
		m.logger.Info("session finished",
			"id", entry.ID,
			"mode", entry.Mode,
			"score", entry.Stats.Score,
			"attempts", entry.Stats.Attempts)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	contentWidth := int(float64(m.width) * 0.70)
	if m.width == 0 {
		contentWidth = 0
	} else if contentWidth < 1 {
		contentWidth = 1
	}
	content := m.renderBody(contentWidth)
	if m.width == 0 || m.height == 0 {
		return content
	}
	content = lipgloss.NewStyle().Width(contentWidth).Render(content)
	footer := m.renderFooter() + "\n" + m.help.View(m.keys)
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	footerBlock := lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
	return body + "\n" + footerBlock
}

func (m *Model) renderBody(width int) string {
	var lines []string
	lines = append(lines, titleStyle.Render(strings.ToUpper(string(m.session.Mode()))+" practice"))
	if !m.hasRound {
		if m.notice != "" {
			lines = append(lines, "", wrapText(m.notice, supportStyle, width))
		}
		return strings.Join(lines, "\n")
	}
	if m.round.Reason != "" {
		lines = append(lines, pendingStyle.Render(m.round.Reason))
	}
	if m.round.Pair != nil && m.round.Presentation.Reason != "" {
		lines = append(lines, pendingStyle.Render(m.round.Presentation.Reason))
	}
	lines = append(lines, "")

	if m.round.Mode == model.ModeStructure && m.round.Word != nil {
		lines = append(lines, renderStyledRunes(buildSoundRunes(*m.round.Word, m.highlight)))
		lines = append(lines, m.renderSoundList())
	} else {
		lines = append(lines, choiceStyle.Render(m.round.Prompt()))
		lines = append(lines, m.renderChoices())
	}
	if m.round.Mode == model.ModeSounds {
		lines = append(lines, "Your sounds: "+choiceStyle.Render(strings.Join(m.built, " ")))
	}
	if !m.session.Played() {
		lines = append(lines, pendingStyle.Render("Press space to listen."))
	}
	if m.captions != nil {
		if u, ok := m.captions.Last(); ok {
			lines = append(lines, captionStyle.Render("♪ "+u.Text))
		}
	}
	if m.hint != "" {
		lines = append(lines, "", wrapText(m.hint, supportStyle, width))
	}
	lines = append(lines, m.renderOutcome(width)...)
	if m.notice != "" {
		lines = append(lines, "", wrapText(m.notice, supportStyle, width))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderChoices() string {
	parts := make([]string, 0, len(m.round.Choices))
	for i, choice := range m.round.Choices {
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, choiceStyle.Render(choice)))
	}
	return strings.Join(parts, "   ")
}

func (m *Model) renderSoundList() string {
	parts := make([]string, 0, len(m.round.Word.Sounds))
	for i, snd := range m.round.Word.Sounds {
		style := choiceStyle
		if i == m.highlight {
			style = highlightStyle
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, style.Render(snd.Phoneme)))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderOutcome(width int) []string {
	if m.outcome == nil {
		return nil
	}
	out := m.outcome
	style := supportStyle
	if out.Correct {
		style = correctStyle
	}
	lines := []string{"", wrapText(out.Feedback.Message, style, width)}
	if out.Points > 0 {
		lines = append(lines, correctStyle.Render(fmt.Sprintf("+%d points", out.Points)))
	}
	if out.Feedback.Tip != "" {
		lines = append(lines, wrapText("Tip: "+out.Feedback.Tip, supportStyle, width))
	}
	if out.Feedback.Suggestion != "" {
		lines = append(lines, wrapText(out.Feedback.Suggestion, supportStyle, width))
	}
	if out.Answer != "" {
		lines = append(lines, wrapText("Answer: "+out.Answer, choiceStyle, width))
	}
	var actions []string
	if out.Correct {
		actions = append(actions, "enter: next")
	} else {
		actions = append(actions, "r: try again", "space: replay")
		if out.Intensity.ShowComparison && m.round.Pair != nil {
			actions = append(actions, "c: compare")
		}
		if out.Intensity.ShowHint {
			actions = append(actions, "h: hint")
		}
	}
	lines = append(lines, pendingStyle.Render(strings.Join(actions, " · ")))
	if out.Break.ShouldBreak {
		lines = append(lines, wrapText(out.Break.Reason, supportStyle, width))
	}
	return lines
}

func (m *Model) renderFooter() string {
	st := m.session.Stats()
	segments := []string{
		fmt.Sprintf("Score %d", st.Score),
		fmt.Sprintf("Streak %d", m.session.Streak()),
	}
	if st.Attempts > 0 {
		segments = append(segments, fmt.Sprintf("Session %.1f%%", float64(st.Correct)/float64(st.Attempts)*100))
	}
	if m.ledger != nil {
		overall := statsPkg.Overall(m.ledger.Snapshot(), time.Now())
		if overall.TotalAttempts > 0 {
			segments = append(segments, fmt.Sprintf("All-time %.1f%%", overall.TotalAccuracy*100))
		}
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
