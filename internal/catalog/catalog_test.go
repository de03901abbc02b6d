package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)
	assert.Len(t, cat.Pairs, 20)
	assert.Len(t, cat.Words, 10)
	assert.Len(t, cat.Syllables, 20)

	first := cat.Pairs[0]
	assert.Equal(t, "thirteen-fourteen", first.Key())
	assert.Equal(t, "/θ/ vs /f/", first.DifficultySound)
	assert.Contains(t, first.Tips["thirteen"], "tongue")

	for _, s := range cat.Syllables {
		assert.Len(t, s.Stress, len(s.Syllables), s.Word)
	}
	assert.Equal(t, "○●○", cat.Syllables[12].BeatPattern())
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mine.toml")
	content := `
[[pair]]
id = "p1"
words = ["ship", "chip"]
difficulty_sound = "/ʃ/ vs /tʃ/"
difficulty = "easy"

[[word]]
word = "map"
sounds = [{ letter = "m", phoneme = "/m/" }, { letter = "a", phoneme = "/æ/" }, { letter = "p", phoneme = "/p/" }]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cat.Pairs, 1)
	assert.Equal(t, "ship-chip", cat.Pairs[0].Key())
	assert.Equal(t, []string{"/m/", "/æ/", "/p/"}, Phonemes(cat))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"single word pair": `[[pair]]
words = ["ship"]`,
		"hyphenated word": `[[pair]]
words = ["t-shirt", "shirt"]`,
		"stress mismatch": `[[syllable]]
word = "tiger"
syllables = ["ti", "ger"]
stress = [1]`,
		"word without sounds": `[[word]]
word = "cat"`,
		"unknown difficulty": `[[pair]]
words = ["pat", "bat"]
difficulty = "extreme"`,
		"unknown key": `[[pair]]
words = ["pat", "bat"]
colour = "red"`,
		"empty": ``,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidArgument)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	err := Validate(model.Catalog{
		Pairs:     []model.MinimalPair{{ID: "a", Words: []string{"x"}}, {ID: "b", Words: []string{"y", "y"}}},
		Syllables: []model.SyllableWord{{Word: "w", Syllables: []string{"w"}}},
	})
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "pair 1"), msg)
	assert.True(t, strings.Contains(msg, "pair 2"), msg)
	assert.True(t, strings.Contains(msg, "syllable word 1"), msg)
}

func TestForDifficulty(t *testing.T) {
	cat, err := Default()
	require.NoError(t, err)

	hard := ForDifficulty(cat, model.DifficultyHard)
	require.NotEmpty(t, hard.Pairs)
	for _, p := range hard.Pairs {
		assert.Equal(t, model.DifficultyHard, p.Difficulty)
	}
	for _, s := range hard.Syllables {
		assert.Equal(t, model.DifficultyHard, s.Difficulty)
	}
	assert.Len(t, hard.Words, len(cat.Words))
	assert.Equal(t, cat, ForDifficulty(cat, ""))
}
