// Package model defines shared data structures.
package model

import (
	"strings"
	"time"

	"github.com/verte-zerg/soundcheck/internal/common"
)

// Kind names a category of tracked item.
type Kind string

// Tracked item kinds.
const (
	KindSound Kind = "sound"
	KindPair  Kind = "pair"
	KindWord  Kind = "word"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindSound, KindPair, KindWord}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", common.InvalidArgumentf("unknown item kind %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSound, KindPair, KindWord:
		return true
	}
	return false
}

// PairSeparator joins the two words of a pair key.
const PairSeparator = "-"

// PairKey builds the key for a minimal pair.
func PairKey(first, second string) string {
	return first + PairSeparator + second
}

// SplitPairKey returns the two words of a pair key.
func SplitPairKey(key string) (string, string, error) {
	parts := strings.Split(key, PairSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", common.InvalidArgumentf("malformed pair key %q", key)
	}
	return parts[0], parts[1], nil
}

// TrackedItem identifies a unit of practice.
type TrackedItem struct {
	Kind Kind
	Key  string
}

// Validate checks the kind and, for pairs, the key shape.
func (t TrackedItem) Validate() error {
	if !t.Kind.Valid() {
		return common.InvalidArgumentf("unknown item kind %q", t.Kind)
	}
	if t.Key == "" {
		return common.InvalidArgumentf("empty %s key", t.Kind)
	}
	if t.Kind == KindPair {
		if _, _, err := SplitPairKey(t.Key); err != nil {
			return err
		}
	}
	return nil
}

// Mode identifies a practice mode.
type Mode string

// Practice modes.
const (
	ModePairs     Mode = "pairs"
	ModeSyllables Mode = "syllables"
	ModeSounds    Mode = "sounds"
	ModeStructure Mode = "structure"
)

// Modes lists every practice mode.
var Modes = []Mode{ModePairs, ModeSyllables, ModeSounds, ModeStructure}

// Metadata is the context stored alongside an accuracy record.
// Mode and DifficultySound drive selection and feedback; the rest is informational.
type Metadata struct {
	Mode            Mode     `json:"mode,omitempty"`
	DifficultySound string   `json:"difficulty_sound,omitempty"`
	SpeechMode      string   `json:"speech_mode,omitempty"`
	PlayedWord      string   `json:"played_word,omitempty"`
	Pair            []string `json:"pair,omitempty"`
	Word            string   `json:"word,omitempty"`
	Position        *int     `json:"position,omitempty"`
	SyllableCount   int      `json:"syllable_count,omitempty"`
	UserGuess       int      `json:"user_guess,omitempty"`
	SoundCount      int      `json:"sound_count,omitempty"`
	UserCount       int      `json:"user_count,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
}

// Merge overwrites fields that are set in update and keeps the rest.
func (m Metadata) Merge(update Metadata) Metadata {
	out := m.clone()
	if update.Mode != "" {
		out.Mode = update.Mode
	}
	if update.DifficultySound != "" {
		out.DifficultySound = update.DifficultySound
	}
	if update.SpeechMode != "" {
		out.SpeechMode = update.SpeechMode
	}
	if update.PlayedWord != "" {
		out.PlayedWord = update.PlayedWord
	}
	if len(update.Pair) > 0 {
		out.Pair = append([]string(nil), update.Pair...)
	}
	if update.Word != "" {
		out.Word = update.Word
	}
	if update.Position != nil {
		pos := *update.Position
		out.Position = &pos
	}
	if update.SyllableCount != 0 {
		out.SyllableCount = update.SyllableCount
	}
	if update.UserGuess != 0 {
		out.UserGuess = update.UserGuess
	}
	if update.SoundCount != 0 {
		out.SoundCount = update.SoundCount
	}
	if update.UserCount != 0 {
		out.UserCount = update.UserCount
	}
	if update.Difficulty != "" {
		out.Difficulty = update.Difficulty
	}
	return out
}

func (m Metadata) clone() Metadata {
	out := m
	if m.Pair != nil {
		out.Pair = append([]string(nil), m.Pair...)
	}
	if m.Position != nil {
		pos := *m.Position
		out.Position = &pos
	}
	return out
}

// AccuracyRecord stores per-item counts.
type AccuracyRecord struct {
	Correct     int
	Total       int
	LastAttempt *time.Time
	Metadata    Metadata
}

// Accuracy returns correct/total, or false when the item was never attempted.
func (r AccuracyRecord) Accuracy() (float64, bool) {
	if r.Total == 0 {
		return 0, false
	}
	return float64(r.Correct) / float64(r.Total), true
}

// Clone returns a deep copy.
func (r AccuracyRecord) Clone() AccuracyRecord {
	out := r
	if r.LastAttempt != nil {
		ts := *r.LastAttempt
		out.LastAttempt = &ts
	}
	out.Metadata = r.Metadata.clone()
	return out
}

// SessionStats summarizes one completed practice session.
type SessionStats struct {
	Score      int   `json:"score"`
	Attempts   int   `json:"attempts"`
	Correct    int   `json:"correct"`
	BestStreak int   `json:"best_streak"`
	DurationMs int64 `json:"duration_ms"`
}

// SessionEntry is one row of the ledger's session history.
type SessionEntry struct {
	ID        string
	Mode      Mode
	Timestamp time.Time
	Stats     SessionStats
}

// ItemEntry pairs a key with its record, preserving ledger order.
type ItemEntry struct {
	Key    string
	Record AccuracyRecord
}

// LedgerSnapshot is an immutable copy of ledger state.
type LedgerSnapshot struct {
	Items          map[Kind][]ItemEntry
	TotalAttempts  int
	TotalCorrect   int
	SessionHistory []SessionEntry
	StartDate      time.Time
	Version        int64
}

// Find returns the record for a key in the snapshot.
func (s LedgerSnapshot) Find(kind Kind, key string) (AccuracyRecord, bool) {
	for _, entry := range s.Items[kind] {
		if entry.Key == key {
			return entry.Record, true
		}
	}
	return AccuracyRecord{}, false
}

// Config defines practice settings.
type Config struct {
	User        string `validate:"required"`
	Mode        Mode   `validate:"oneof=pairs syllables sounds structure"`
	Difficulty  string `validate:"omitempty,oneof=easy medium hard"`
	Adaptive    bool
	StreakBonus bool
	CatalogPath string
}

// SpeechConfig defines how stimuli are voiced.
type SpeechConfig struct {
	Command  string
	BaseRate float64 `validate:"gt=0,lte=4"`
	Voice    string
}
