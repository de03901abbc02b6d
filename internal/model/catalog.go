package model

// Difficulty levels used by catalogs and the difficulty adapter.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Sound is one grapheme/phoneme unit of a word.
type Sound struct {
	Letter  string `toml:"letter"`
	Phoneme string `toml:"phoneme"`
	Color   string `toml:"color"`
}

// Word is a decomposable catalog word.
type Word struct {
	Word   string  `toml:"word"`
	Sounds []Sound `toml:"sounds"`
	Image  string  `toml:"image"`
}

// MinimalPair is two words that differ by one sound.
type MinimalPair struct {
	ID              string            `toml:"id"`
	Words           []string          `toml:"words"`
	Phonemes        []string          `toml:"phonemes"`
	Difference      string            `toml:"difference"`
	DifficultySound string            `toml:"difficulty_sound"`
	Difficulty      string            `toml:"difficulty"`
	Category        string            `toml:"category"`
	Tips            map[string]string `toml:"tips"`
	VisualCue       string            `toml:"visual_cue"`
}

// Key returns the ledger key for the pair.
func (p MinimalPair) Key() string {
	if len(p.Words) != 2 {
		return ""
	}
	return PairKey(p.Words[0], p.Words[1])
}

// SyllableWord is a word with its syllable breakdown and stress pattern.
type SyllableWord struct {
	Word       string   `toml:"word"`
	Syllables  []string `toml:"syllables"`
	Stress     []int    `toml:"stress"`
	Tip        string   `toml:"tip"`
	Emphasis   string   `toml:"emphasis"`
	Image      string   `toml:"image"`
	Difficulty string   `toml:"difficulty"`
}

// BeatPattern renders stressed syllables as ● and unstressed as ○.
func (w SyllableWord) BeatPattern() string {
	out := make([]rune, 0, len(w.Stress))
	for _, s := range w.Stress {
		if s == 1 {
			out = append(out, '●')
		} else {
			out = append(out, '○')
		}
	}
	return string(out)
}

// Catalog is the read-only practice content.
type Catalog struct {
	Words     []Word         `toml:"word"`
	Pairs     []MinimalPair  `toml:"pair"`
	Syllables []SyllableWord `toml:"syllable"`
}
