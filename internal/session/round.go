package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/soundcheck/internal/adapt"
	"github.com/verte-zerg/soundcheck/internal/feedback"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/selector"
	"github.com/verte-zerg/soundcheck/internal/speech"
)

// Stimulus timing and prosody.
const (
	WordRate          = 0.6
	SyllableLeadPause = 1500 * time.Millisecond
	SyllableGap       = 800 * time.Millisecond
	ComparePause      = 2000 * time.Millisecond
	ExaggeratedPitch  = 1.2
	NoiseRateBoost    = 0.1
)

// Round is one item being practiced.
type Round struct {
	Mode       model.Mode
	Focus      selector.Focus
	Reason     string
	Difficulty string

	Pair         *model.MinimalPair
	PlayedWord   string
	Contrast     feedback.Contrast
	Presentation adapt.SpeechRate
	Speech       speech.Options

	Syllable *model.SyllableWord
	Word     *model.Word

	// Choices are the answer buttons: pair words, syllable counts, or sounds.
	Choices []string

	Attempts  int
	Revealed  bool
	HintShown bool
}

type trackedAttempt struct {
	kind    model.Kind
	key     string
	correct bool
	meta    model.Metadata
}

// Key is the ledger key of the round's item.
func (r Round) Key() string {
	switch {
	case r.Pair != nil:
		return r.Pair.Key()
	case r.Syllable != nil:
		return r.Syllable.Word
	case r.Word != nil:
		return r.Word.Word
	}
	return ""
}

// Prompt is the text shown for the item.
func (r Round) Prompt() string {
	switch r.Mode {
	case model.ModePairs:
		return "Which word did you hear?"
	case model.ModeSyllables:
		return "How many syllables?"
	case model.ModeSounds:
		return "Build the word from its sounds"
	}
	if r.Word != nil {
		return r.Word.Word
	}
	return ""
}

func (r Round) clone() Round {
	out := r
	out.Choices = append([]string(nil), r.Choices...)
	if r.Pair != nil {
		p := *r.Pair
		out.Pair = &p
	}
	if r.Syllable != nil {
		s := *r.Syllable
		out.Syllable = &s
	}
	if r.Word != nil {
		w := *r.Word
		out.Word = &w
	}
	return out
}

func (r *Round) stimulus() speech.Sequence {
	wordOpts := speech.DefaultOptions()
	wordOpts.Rate = WordRate
	switch {
	case r.Pair != nil:
		return speech.Say(r.PlayedWord, r.Speech)
	case r.Syllable != nil:
		seq := speech.Sequence{{
			Utterance:  speech.Utterance{Text: r.Syllable.Word, Options: wordOpts},
			PauseAfter: SyllableLeadPause,
		}}
		for i, syl := range r.Syllable.Syllables {
			opts := speech.Options{Rate: 0.6, Pitch: 1.0, Volume: 0.8}
			if i < len(r.Syllable.Stress) && r.Syllable.Stress[i] == 1 {
				opts = speech.Options{Rate: 0.5, Pitch: 1.2, Volume: 1.0}
			}
			step := speech.Step{Utterance: speech.Utterance{Text: syl, Options: opts}}
			if i < len(r.Syllable.Syllables)-1 {
				step.PauseAfter = SyllableGap
			}
			seq = append(seq, step)
		}
		return seq
	case r.Word != nil:
		return speech.Say(r.Word.Word, wordOpts)
	}
	return nil
}

func (r *Round) comparison() speech.Sequence {
	opts := speech.DefaultOptions()
	return speech.Sequence{
		{Utterance: speech.Utterance{Text: "First word: " + r.Pair.Words[0], Options: opts}, PauseAfter: ComparePause},
		{Utterance: speech.Utterance{Text: "Second word: " + r.Pair.Words[1], Options: opts}},
	}
}

func (r *Round) evaluate(resp Response) bool {
	switch r.Mode {
	case model.ModePairs:
		return strings.EqualFold(strings.TrimSpace(resp.Choice), r.PlayedWord)
	case model.ModeSyllables:
		return resp.Count == len(r.Syllable.Syllables)
	case model.ModeSounds:
		if len(resp.Sounds) != len(r.Word.Sounds) {
			return false
		}
		for i, s := range r.Word.Sounds {
			if resp.Sounds[i] != s.Phoneme {
				return false
			}
		}
		return true
	case model.ModeStructure:
		return resp.Done
	}
	return false
}

func (r *Round) answer() string {
	switch r.Mode {
	case model.ModePairs:
		return r.PlayedWord
	case model.ModeSyllables:
		return fmt.Sprintf("%d (%s) %s", len(r.Syllable.Syllables), strings.Join(r.Syllable.Syllables, "-"), r.Syllable.BeatPattern())
	case model.ModeSounds:
		phonemes := make([]string, 0, len(r.Word.Sounds))
		for _, s := range r.Word.Sounds {
			phonemes = append(phonemes, s.Phoneme)
		}
		return strings.Join(phonemes, " ")
	}
	return ""
}

func (r *Round) tracked(resp Response, correct bool) []trackedAttempt {
	switch r.Mode {
	case model.ModePairs:
		out := []trackedAttempt{{
			kind:    model.KindPair,
			key:     r.Pair.Key(),
			correct: correct,
			meta: model.Metadata{
				Mode:            r.Mode,
				DifficultySound: r.Pair.DifficultySound,
				SpeechMode:      r.Presentation.Mode,
				PlayedWord:      r.PlayedWord,
			},
		}}
		if !r.Contrast.IsZero() {
			out = append(out, trackedAttempt{
				kind:    model.KindSound,
				key:     r.Contrast.String(),
				correct: correct,
				meta: model.Metadata{
					Mode:       r.Mode,
					Pair:       append([]string(nil), r.Pair.Words...),
					SpeechMode: r.Presentation.Mode,
				},
			})
		}
		return out
	case model.ModeSyllables:
		return []trackedAttempt{{
			kind:    model.KindWord,
			key:     r.Syllable.Word,
			correct: correct,
			meta: model.Metadata{
				Mode:          r.Mode,
				SyllableCount: len(r.Syllable.Syllables),
				UserGuess:     resp.Count,
				Difficulty:    r.Syllable.Difficulty,
			},
		}}
	case model.ModeSounds:
		out := []trackedAttempt{{
			kind:    model.KindWord,
			key:     r.Word.Word,
			correct: correct,
			meta: model.Metadata{
				Mode:       r.Mode,
				SoundCount: len(r.Word.Sounds),
				UserCount:  len(resp.Sounds),
			},
		}}
		for i, s := range r.Word.Sounds {
			pos := i
			out = append(out, trackedAttempt{
				kind:    model.KindSound,
				key:     s.Phoneme,
				correct: i < len(resp.Sounds) && resp.Sounds[i] == s.Phoneme,
				meta: model.Metadata{
					Mode:     r.Mode,
					Word:     r.Word.Word,
					Position: &pos,
				},
			})
		}
		return out
	}
	// Structure exploration is not tracked.
	return nil
}
