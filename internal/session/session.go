// Package session drives practice rounds for every mode.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/verte-zerg/soundcheck/internal/adapt"
	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/feedback"
	"github.com/verte-zerg/soundcheck/internal/ledger"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/selector"
	"github.com/verte-zerg/soundcheck/internal/speech"
	"github.com/verte-zerg/soundcheck/internal/stats"
)

// PointsPerCorrect is the flat score for a correct answer.
const PointsPerCorrect = 10

// ErrNoRound is returned when an action needs a round and none is loaded.
var ErrNoRound = errors.New("no round in progress")

// Presenter plays a speech sequence without blocking.
type Presenter interface {
	Play(seq speech.Sequence) <-chan error
}

// Notifier is told after every ledger mutation.
type Notifier interface {
	Notify()
}

// Options selects what and how to practice.
type Options struct {
	Mode        model.Mode
	Difficulty  string
	Adaptive    bool
	StreakBonus bool
}

// Response is the learner's answer. Each mode reads its own field.
type Response struct {
	Choice string
	Count  int
	Sounds []string
	Done   bool
}

// Outcome is the evaluation of one answer.
type Outcome struct {
	Correct   bool
	Feedback  model.FeedbackResult
	Intensity adapt.Intensity
	Break     adapt.BreakAdvice
	Points    int
	Score     int
	Streak    int
	// Answer is set once the correct answer is revealed.
	Answer string
}

// Session is one practice run in a single mode.
type Session struct {
	opts      Options
	catalog   model.Catalog
	ledger    *ledger.Ledger
	presenter Presenter
	notifier  Notifier
	selector  *selector.Selector
	composer  *feedback.Composer
	logger    *slog.Logger
	now       func() time.Time

	state    State
	played   bool
	round    *Round
	started  time.Time
	recent   []bool
	stats    model.SessionStats
	streak   int
	finished bool
}

// Option configures a Session.
type Option func(*Session)

// WithSelector injects the item selector.
func WithSelector(sel *selector.Selector) Option {
	return func(s *Session) {
		s.selector = sel
	}
}

// WithComposer injects the feedback composer.
func WithComposer(c *feedback.Composer) Option {
	return func(s *Session) {
		s.composer = c
	}
}

// WithNotifier registers a listener for ledger mutations.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New validates options and returns an idle session.
func New(opts Options, cat model.Catalog, l *ledger.Ledger, presenter Presenter, extra ...Option) (*Session, error) {
	switch opts.Mode {
	case model.ModePairs, model.ModeSyllables, model.ModeSounds, model.ModeStructure:
	default:
		return nil, common.InvalidArgumentf("unknown mode %q", opts.Mode)
	}
	switch opts.Difficulty {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return nil, common.InvalidArgumentf("unknown difficulty %q", opts.Difficulty)
	}
	if l == nil {
		return nil, common.InvalidArgumentf("ledger is required")
	}
	if presenter == nil {
		presenter = speech.NewNarrator(speech.Silent{}, nil)
	}
	s := &Session{
		opts:      opts,
		catalog:   cat,
		ledger:    l,
		presenter: presenter,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range extra {
		opt(s)
	}
	if s.selector == nil {
		s.selector = selector.New()
	}
	if s.composer == nil {
		s.composer = feedback.New()
	}
	s.started = s.now()
	return s, nil
}

// Mode returns the practice mode.
func (s *Session) Mode() model.Mode {
	return s.opts.Mode
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Played reports whether the current stimulus has been presented.
func (s *Session) Played() bool {
	return s.played
}

// Round returns the current round.
func (s *Session) Round() (Round, bool) {
	if s.round == nil {
		return Round{}, false
	}
	return s.round.clone(), true
}

// Stats returns the running session totals.
func (s *Session) Stats() model.SessionStats {
	out := s.stats
	out.DurationMs = s.now().Sub(s.started).Milliseconds()
	return out
}

// Streak returns the current run of correct answers.
func (s *Session) Streak() int {
	return s.streak
}

// Next selects a fresh item and enters StimulusReady.
func (s *Session) Next() (Round, error) {
	round, err := s.selectRound()
	if err != nil {
		return Round{}, err
	}
	s.round = &round
	s.played = false
	s.state = StateStimulusReady
	s.logger.Debug("round selected",
		"mode", s.opts.Mode,
		"item", round.Key(),
		"focus", round.Focus,
		"difficulty", round.Difficulty)
	return round.clone(), nil
}

// Play presents the stimulus. The first play moves the round to AwaitingResponse.
func (s *Session) Play() error {
	if s.round == nil {
		return ErrNoRound
	}
	s.presenter.Play(s.round.stimulus())
	s.played = true
	if s.state == StateStimulusReady {
		s.state = StateAwaitingResponse
	}
	return nil
}

// Replay presents the stimulus again without changing state.
func (s *Session) Replay() error {
	if s.round == nil || !s.played {
		return ErrNoRound
	}
	s.presenter.Play(s.round.stimulus())
	return nil
}

// Compare plays both words of the current pair.
func (s *Session) Compare() error {
	if s.round == nil || s.round.Pair == nil {
		return ErrNoRound
	}
	s.presenter.Play(s.round.comparison())
	return nil
}

// SoundOut speaks one sound of the current word.
func (s *Session) SoundOut(index int) error {
	if s.round == nil || s.round.Word == nil {
		return ErrNoRound
	}
	if index < 0 || index >= len(s.round.Word.Sounds) {
		return common.InvalidArgumentf("sound index %d out of range", index)
	}
	s.presenter.Play(speech.Sequence{{Utterance: speech.Phoneme(s.round.Word.Sounds[index].Phoneme)}})
	return nil
}

// Hint returns help for the current round. In sounds mode it reveals the first sound.
func (s *Session) Hint() (string, bool) {
	if s.round == nil {
		return "", false
	}
	if s.opts.Mode == model.ModeSounds && s.round.Word != nil && len(s.round.Word.Sounds) > 0 {
		s.round.HintShown = true
		return fmt.Sprintf("It starts with %s", s.round.Word.Sounds[0].Phoneme), true
	}
	if tip, ok := s.composer.Tip(s.round.Contrast); ok && s.round.Attempts >= 1 {
		return tip, true
	}
	return s.composer.Hint(s.round.Attempts + 1)
}

// Answer evaluates a response. It is a no-op returning false unless the
// stimulus was played and a response is awaited.
func (s *Session) Answer(resp Response) (Outcome, bool) {
	if s.round == nil || !s.played || s.state != StateAwaitingResponse {
		return Outcome{}, false
	}
	s.state = StateEvaluated
	r := s.round
	r.Attempts++

	correct := r.evaluate(resp)
	s.record(r, resp, correct)

	newStreak := 0
	if correct {
		newStreak = s.streak + 1
	}
	out := Outcome{
		Correct: correct,
		Feedback: s.composer.Compose(correct, feedback.Context{
			Contrast: r.Contrast,
			Streak:   newStreak,
			Attempts: r.Attempts,
		}),
		Intensity: adapt.FeedbackIntensity(r.Attempts, correct),
	}
	if !correct && out.Feedback.Suggestion == "" && s.struggling(r) {
		out.Feedback.Suggestion = s.composer.Encouragement()
	}

	s.stats.Attempts++
	s.streak = newStreak
	if correct {
		s.stats.Correct++
		out.Points = PointsPerCorrect
		if s.opts.StreakBonus {
			out.Points += adapt.StreakBonus(s.streak)
		}
		s.stats.Score += out.Points
		s.stats.BestStreak = max(s.stats.BestStreak, s.streak)
	}
	out.Score = s.stats.Score
	out.Streak = s.streak

	s.recent = append(s.recent, correct)
	if len(s.recent) > adapt.RecentAttemptWindow {
		s.recent = s.recent[len(s.recent)-adapt.RecentAttemptWindow:]
	}
	minutes := s.now().Sub(s.started).Minutes()
	out.Break = adapt.ShouldTakeBreak(minutes, adapt.RecentAccuracy(s.recent))

	if !correct && s.opts.Mode == model.ModeSyllables && r.Attempts >= 2 {
		r.Revealed = true
	}
	if r.Revealed {
		out.Answer = r.answer()
	}

	if correct {
		s.state = StateIdle
	} else {
		s.state = StateAwaitingRetry
	}
	return out, true
}

// TryAgain returns to AwaitingResponse for the same item.
func (s *Session) TryAgain() bool {
	if s.state != StateAwaitingRetry || s.round == nil {
		return false
	}
	s.state = StateAwaitingResponse
	return true
}

// Finish records the session in the ledger if anything was attempted.
func (s *Session) Finish() (model.SessionEntry, bool, error) {
	if s.finished || s.stats.Attempts == 0 {
		return model.SessionEntry{}, false, nil
	}
	entry, err := s.ledger.RecordSession(s.opts.Mode, s.Stats())
	if err != nil {
		return model.SessionEntry{}, false, fmt.Errorf("failed to record session: %w", err)
	}
	s.finished = true
	s.notify()
	return entry, true, nil
}

func (s *Session) record(r *Round, resp Response, correct bool) {
	items := r.tracked(resp, correct)
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		if _, err := s.ledger.RecordAttempt(item.kind, item.key, item.correct, item.meta); err != nil {
			s.logger.Error("failed to record attempt",
				"kind", item.kind,
				"key", item.key,
				"error", err)
		}
	}
	s.notify()
}

// struggling reports a low running accuracy on the round's contrast.
func (s *Session) struggling(r *Round) bool {
	if r.Contrast.IsZero() {
		return false
	}
	return stats.ShouldEncourage(s.ledger.Snapshot(), model.KindSound, r.Contrast.String())
}

func (s *Session) notify() {
	if s.notifier != nil {
		s.notifier.Notify()
	}
}
