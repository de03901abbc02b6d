// Package feedback composes supportive answer feedback.
package feedback

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/soundcheck/internal/model"
)

// Context describes the answer being reviewed.
type Context struct {
	Contrast Contrast
	Streak   int
	Attempts int
}

// Composer picks messages from a phrase table.
type Composer struct {
	rnd     *rand.Rand
	phrases Phrases
}

// New returns a Composer with the default table seeded from the clock.
func New() *Composer {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())), DefaultPhrases())
}

// NewWithRand returns a Composer with an explicit random source and table.
func NewWithRand(rnd *rand.Rand, phrases Phrases) *Composer {
	return &Composer{rnd: rnd, phrases: phrases}
}

// Compose builds the feedback for one answer.
func (c *Composer) Compose(correct bool, ctx Context) model.FeedbackResult {
	attempts := max(ctx.Attempts, 1)
	if correct {
		msg, ok := c.phrases.Streak[ctx.Streak]
		if !ok {
			msg = c.pick(c.phrases.Correct)
		}
		return model.FeedbackResult{
			Type:     model.FeedbackCorrect,
			Message:  msg,
			Tone:     model.ToneEncouraging,
			Attempts: attempts,
		}
	}

	res := model.FeedbackResult{
		Type:       model.FeedbackIncorrect,
		Message:    c.pick(c.phrases.Supportive),
		Tone:       model.ToneSupportive,
		ShowReplay: true,
		ShowHint:   attempts >= 2,
		Attempts:   attempts,
	}
	if specific, ok := c.lookup(ctx.Contrast); ok {
		if attempts == 1 {
			res.Message = specific.Message
		}
		if attempts >= 2 && specific.Tip != "" {
			res.Tip = specific.Tip
			res.ShowTip = true
		}
	}
	if attempts >= 3 {
		res.Suggestion = c.pick(c.phrases.Encouragement)
	}
	return res
}

// Hint returns a progressive hint for the attempt number, or false before the second attempt.
func (c *Composer) Hint(attempts int) (string, bool) {
	if attempts < 2 {
		return "", false
	}
	level := min(attempts-2, len(c.phrases.Hints)-1)
	hint := c.pick(c.phrases.Hints[level])
	return hint, hint != ""
}

// Encouragement returns a random encouragement line.
func (c *Composer) Encouragement() string {
	return c.pick(c.phrases.Encouragement)
}

// Tip returns the articulation tip for a contrast, if one is known.
func (c *Composer) Tip(contrast Contrast) (string, bool) {
	specific, ok := c.lookup(contrast)
	if !ok || specific.Tip == "" {
		return "", false
	}
	return specific.Tip, true
}

func (c *Composer) lookup(contrast Contrast) (Specific, bool) {
	if contrast.IsZero() {
		return Specific{}, false
	}
	specific, ok := c.phrases.Specific[contrast]
	return specific, ok
}

func (c *Composer) pick(pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[c.rnd.Intn(len(pool))]
}
