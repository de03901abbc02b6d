package session

import (
	"strconv"

	"github.com/verte-zerg/soundcheck/internal/adapt"
	"github.com/verte-zerg/soundcheck/internal/catalog"
	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/feedback"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/selector"
	"github.com/verte-zerg/soundcheck/internal/speech"
	"github.com/verte-zerg/soundcheck/internal/stats"
)

// MaxSyllableChoice is the largest syllable count offered.
const MaxSyllableChoice = 4

// MaxDistractors caps the extra sounds offered in sounds mode.
const MaxDistractors = 4

func trackedKind(mode model.Mode) model.Kind {
	if mode == model.ModePairs {
		return model.KindPair
	}
	return model.KindWord
}

func (s *Session) difficulty(snap model.LedgerSnapshot) string {
	if !s.opts.Adaptive {
		return s.opts.Difficulty
	}
	acc, total := stats.KindAccuracy(snap, trackedKind(s.opts.Mode))
	return adapt.RecommendDifficulty(acc, total)
}

func (s *Session) selectRound() (Round, error) {
	snap := s.ledger.Snapshot()
	difficulty := s.difficulty(snap)
	filtered := catalog.ForDifficulty(s.catalog, difficulty)

	switch s.opts.Mode {
	case model.ModePairs:
		items := filtered.Pairs
		if len(items) == 0 {
			items, difficulty = s.catalog.Pairs, ""
		}
		problem, mastered, fresh := pools(items, model.MinimalPair.Key, snap, model.KindPair)
		sel, ok := selector.Next(s.selector, problem, mastered, fresh)
		if !ok {
			return Round{}, common.ErrNoContent
		}
		return s.pairRound(sel, difficulty), nil

	case model.ModeSyllables:
		items := filtered.Syllables
		if len(items) == 0 {
			items, difficulty = s.catalog.Syllables, ""
		}
		problem, mastered, fresh := pools(items, func(w model.SyllableWord) string { return w.Word }, snap, model.KindWord)
		sel, ok := selector.Next(s.selector, problem, mastered, fresh)
		if !ok {
			return Round{}, common.ErrNoContent
		}
		word := sel.Item
		choices := make([]string, 0, MaxSyllableChoice)
		for i := 1; i <= MaxSyllableChoice; i++ {
			choices = append(choices, strconv.Itoa(i))
		}
		return Round{
			Mode:       s.opts.Mode,
			Focus:      sel.Focus,
			Reason:     sel.Reason,
			Difficulty: difficulty,
			Syllable:   &word,
			Choices:    choices,
		}, nil

	case model.ModeSounds, model.ModeStructure:
		problem, mastered, fresh := pools(s.catalog.Words, func(w model.Word) string { return w.Word }, snap, model.KindWord)
		sel, ok := selector.Next(s.selector, problem, mastered, fresh)
		if !ok {
			return Round{}, common.ErrNoContent
		}
		word := sel.Item
		r := Round{
			Mode:   s.opts.Mode,
			Focus:  sel.Focus,
			Reason: sel.Reason,
			Word:   &word,
		}
		if s.opts.Mode == model.ModeSounds {
			r.Choices = s.soundChoices(word)
		}
		return r, nil
	}
	return Round{}, common.InvalidArgumentf("unknown mode %q", s.opts.Mode)
}

func (s *Session) pairRound(sel selector.Selection[model.MinimalPair], difficulty string) Round {
	pair := sel.Item
	played, _ := selector.Pick(s.selector, pair.Words)
	contrast := feedback.ParseContrast(pair.DifficultySound)

	kind, key := model.KindPair, pair.Key()
	if !contrast.IsZero() {
		kind, key = model.KindSound, contrast.String()
	}
	rec, _ := s.ledger.Record(kind, key)
	acc, _ := rec.Accuracy()

	presentation := adapt.RecommendSpeechRate(acc, rec.Total)
	opts := speech.DefaultOptions()
	opts.Rate = presentation.Rate
	if presentation.Mode == adapt.SpeechExaggerated {
		opts.Pitch = ExaggeratedPitch
	}
	if adapt.ShouldAddNoise(acc, rec.Total) {
		presentation.Mode = adapt.SpeechNoise
		presentation.Reason = "Adding a challenge"
		opts.Rate += NoiseRateBoost
	}

	return Round{
		Mode:         s.opts.Mode,
		Focus:        sel.Focus,
		Reason:       sel.Reason,
		Difficulty:   difficulty,
		Pair:         &pair,
		PlayedWord:   played,
		Contrast:     contrast,
		Presentation: presentation,
		Speech:       opts,
		Choices:      append([]string(nil), pair.Words...),
	}
}

// soundChoices mixes the word's sounds with up to MaxDistractors others from the catalog.
func (s *Session) soundChoices(word model.Word) []string {
	inWord := map[string]bool{}
	var choices []string
	for _, snd := range word.Sounds {
		if !inWord[snd.Phoneme] {
			inWord[snd.Phoneme] = true
			choices = append(choices, snd.Phoneme)
		}
	}
	var others []string
	for _, phoneme := range catalog.Phonemes(s.catalog) {
		if !inWord[phoneme] {
			others = append(others, phoneme)
		}
	}
	selector.Shuffle(s.selector, others)
	n := min(MaxDistractors, len(word.Sounds), len(others))
	choices = append(choices, others[:n]...)
	selector.Shuffle(s.selector, choices)
	return choices
}
