package feedback

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soundcheck/internal/model"
)

func newTestComposer(seed int64) *Composer {
	return NewWithRand(rand.New(rand.NewSource(seed)), DefaultPhrases())
}

func containsForbidden(msg string) bool {
	lower := strings.ToLower(msg)
	for _, word := range ForbiddenWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func TestPhraseTableHasNoForbiddenWords(t *testing.T) {
	for _, msg := range DefaultPhrases().All() {
		assert.False(t, containsForbidden(msg), "forbidden word in %q", msg)
		assert.NotEmpty(t, msg)
	}
}

func TestComposedIncorrectMessagesStaySupportive(t *testing.T) {
	c := newTestComposer(1)
	contrasts := []Contrast{{}, ParseContrast("/θ/ vs /f/"), ParseContrast("/s/ vs /z/")}
	for i := 0; i < 1000; i++ {
		res := c.Compose(false, Context{Contrast: contrasts[i%len(contrasts)], Attempts: 1 + i%5})
		for _, text := range []string{res.Message, res.Tip, res.Suggestion} {
			require.False(t, containsForbidden(text), "forbidden word in %q", text)
		}
		assert.Equal(t, model.ToneSupportive, res.Tone)
		assert.True(t, res.ShowReplay)
	}
}

func TestStreakMilestoneMessage(t *testing.T) {
	c := newTestComposer(2)
	for i := 0; i < 20; i++ {
		res := c.Compose(true, Context{Streak: 5, Attempts: 1})
		assert.Equal(t, "You're on a roll!", res.Message)
		assert.Equal(t, model.FeedbackCorrect, res.Type)
		assert.Equal(t, model.ToneEncouraging, res.Tone)
		assert.False(t, res.ShowReplay)
		assert.False(t, res.ShowHint)
	}
}

func TestCorrectWithoutMilestoneUsesGeneralPool(t *testing.T) {
	c := newTestComposer(3)
	general := DefaultPhrases().Correct
	for _, streak := range []int{0, 1, 4, 6, 11, 20} {
		res := c.Compose(true, Context{Streak: streak})
		assert.Contains(t, general, res.Message)
	}
}

func TestSpecificFeedbackByAttempt(t *testing.T) {
	c := newTestComposer(4)
	thf := NewContrast("/f/", "/θ/")
	specific := DefaultPhrases().Specific[thf]

	first := c.Compose(false, Context{Contrast: thf, Attempts: 1})
	assert.Equal(t, specific.Message, first.Message)
	assert.Empty(t, first.Tip)
	assert.False(t, first.ShowTip)
	assert.False(t, first.ShowHint)
	assert.Empty(t, first.Suggestion)

	second := c.Compose(false, Context{Contrast: thf, Attempts: 2})
	assert.Contains(t, DefaultPhrases().Supportive, second.Message)
	assert.Equal(t, specific.Tip, second.Tip)
	assert.True(t, second.ShowTip)
	assert.True(t, second.ShowHint)
	assert.Empty(t, second.Suggestion)

	third := c.Compose(false, Context{Contrast: thf, Attempts: 3})
	assert.Equal(t, specific.Tip, third.Tip)
	assert.Contains(t, DefaultPhrases().Encouragement, third.Suggestion)
	assert.Equal(t, 3, third.Attempts)
}

func TestUnknownContrastFallsBackToGeneral(t *testing.T) {
	c := newTestComposer(5)
	res := c.Compose(false, Context{Contrast: NewContrast("/ʃ/", "/tʃ/"), Attempts: 2})
	assert.Contains(t, DefaultPhrases().Supportive, res.Message)
	assert.Empty(t, res.Tip)
	assert.True(t, res.ShowHint)
}

func TestParseContrastIsUnordered(t *testing.T) {
	assert.Equal(t, ParseContrast("/θ/ vs /f/"), ParseContrast("/f/ vs /θ/"))
	assert.Equal(t, NewContrast("θ", " /f/ "), ParseContrast("/θ/ vs /f/"))
	assert.True(t, ParseContrast("/θ/").IsZero())
	assert.True(t, ParseContrast("").IsZero())
	assert.True(t, NewContrast("/s/", "/s/").IsZero())
	assert.Equal(t, "/f/ vs /θ/", ParseContrast("/θ/ vs /f/").String())
	assert.Equal(t, []string{"/f/", "/θ/"}, ParseContrast("/θ/ vs /f/").Phonemes())
}

func TestParseContrastRejectsNonPhonemeLabels(t *testing.T) {
	for _, label := range []string{
		"stress on -TEEN vs THIR-",
		"stress on -TEEN vs FIF-",
		"θ vs f",
		"/θ/ vs f",
		"/θ/ vs /f/ vs /s/",
		"// vs /f/",
		"/ʃ/ vs /t ʃ/",
	} {
		c := ParseContrast(label)
		assert.True(t, c.IsZero(), label)
		assert.Empty(t, c.String(), label)
	}
	assert.Equal(t, "/ʃ/ vs /tʃ/", ParseContrast(" /tʃ/ vs /ʃ/ ").String())
}

func TestHintLevels(t *testing.T) {
	c := newTestComposer(6)
	p := DefaultPhrases()

	_, ok := c.Hint(1)
	assert.False(t, ok)

	h, ok := c.Hint(2)
	require.True(t, ok)
	assert.Contains(t, p.Hints[0], h)
	h, _ = c.Hint(3)
	assert.Contains(t, p.Hints[1], h)
	h, _ = c.Hint(9)
	assert.Contains(t, p.Hints[2], h)

	assert.Contains(t, p.Encouragement, c.Encouragement())

	tip, ok := c.Tip(ParseContrast("/k/ vs /g/"))
	assert.True(t, ok)
	assert.Equal(t, "/g/ vibrates your throat, /k/ doesn't", tip)
	_, ok = c.Tip(Contrast{})
	assert.False(t, ok)
}
