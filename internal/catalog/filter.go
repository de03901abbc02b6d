package catalog

import "github.com/verte-zerg/soundcheck/internal/model"

// ForDifficulty keeps pairs and syllable words at the given difficulty.
// Words carry no difficulty and are always kept. An empty difficulty keeps everything.
func ForDifficulty(cat model.Catalog, difficulty string) model.Catalog {
	if difficulty == "" {
		return cat
	}
	out := model.Catalog{Words: cat.Words}
	for _, p := range cat.Pairs {
		if p.Difficulty == difficulty {
			out.Pairs = append(out.Pairs, p)
		}
	}
	for _, s := range cat.Syllables {
		if s.Difficulty == difficulty {
			out.Syllables = append(out.Syllables, s)
		}
	}
	return out
}

// Phonemes lists every distinct phoneme used by catalog words, in first-seen order.
func Phonemes(cat model.Catalog) []string {
	seen := map[string]bool{}
	var out []string
	for _, w := range cat.Words {
		for _, s := range w.Sounds {
			if !seen[s.Phoneme] {
				seen[s.Phoneme] = true
				out = append(out, s.Phoneme)
			}
		}
	}
	return out
}
