// Package catalog loads practice content from TOML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

//go:embed default.toml
var defaultTOML []byte

var loadDefault = sync.OnceValues(func() (model.Catalog, error) {
	return Parse(defaultTOML)
})

// Default returns the built-in catalog.
func Default() (model.Catalog, error) {
	return loadDefault()
}

// Load reads and validates a catalog file.
func Load(path string) (model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog TOML.
func Parse(data []byte) (model.Catalog, error) {
	var cat model.Catalog
	meta, err := toml.Decode(string(data), &cat)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return model.Catalog{}, common.InvalidArgumentf("unknown catalog keys: %s", strings.Join(keys, ", "))
	}
	if err := Validate(cat); err != nil {
		return model.Catalog{}, err
	}
	return cat, nil
}

// Validate checks that every entry can be practiced.
func Validate(cat model.Catalog) error {
	if len(cat.Pairs) == 0 && len(cat.Words) == 0 && len(cat.Syllables) == 0 {
		return common.InvalidArgumentf("catalog is empty")
	}
	var errs []error
	pairIDs := map[string]bool{}
	for i, p := range cat.Pairs {
		label := fmt.Sprintf("pair %d (%s)", i+1, p.ID)
		if len(p.Words) != 2 {
			errs = append(errs, common.InvalidArgumentf("%s: needs exactly 2 words, got %d", label, len(p.Words)))
			continue
		}
		if p.Words[0] == p.Words[1] {
			errs = append(errs, common.InvalidArgumentf("%s: words must differ", label))
		}
		if _, _, err := model.SplitPairKey(p.Key()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", label, err))
		}
		if p.ID != "" {
			if pairIDs[p.ID] {
				errs = append(errs, common.InvalidArgumentf("%s: duplicate id", label))
			}
			pairIDs[p.ID] = true
		}
		errs = append(errs, checkDifficulty(label, p.Difficulty))
	}
	for i, w := range cat.Words {
		label := fmt.Sprintf("word %d (%s)", i+1, w.Word)
		if w.Word == "" {
			errs = append(errs, common.InvalidArgumentf("%s: missing word", label))
		}
		if len(w.Sounds) == 0 {
			errs = append(errs, common.InvalidArgumentf("%s: needs at least one sound", label))
		}
		for j, s := range w.Sounds {
			if s.Phoneme == "" {
				errs = append(errs, common.InvalidArgumentf("%s: sound %d has no phoneme", label, j+1))
			}
		}
	}
	for i, s := range cat.Syllables {
		label := fmt.Sprintf("syllable word %d (%s)", i+1, s.Word)
		if s.Word == "" || len(s.Syllables) == 0 {
			errs = append(errs, common.InvalidArgumentf("%s: needs a word and syllables", label))
		}
		if len(s.Stress) != len(s.Syllables) {
			errs = append(errs, common.InvalidArgumentf("%s: %d stress marks for %d syllables", label, len(s.Stress), len(s.Syllables)))
		}
		errs = append(errs, checkDifficulty(label, s.Difficulty))
	}
	return errors.Join(errs...)
}

func checkDifficulty(label, difficulty string) error {
	switch difficulty {
	case "", model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return nil
	}
	return common.InvalidArgumentf("%s: unknown difficulty %q", label, difficulty)
}
