package feedback

// Specific is targeted feedback for one sound contrast.
type Specific struct {
	Message string
	Tip     string
}

// Phrases is the full message table.
type Phrases struct {
	Correct       []string
	Streak        map[int]string
	Supportive    []string
	Specific      map[Contrast]Specific
	Encouragement []string
	// Hints[0] is shown on the second attempt, Hints[2] from the fourth on.
	Hints [3][]string
}

// ForbiddenWords must never appear in any message.
var ForbiddenWords = []string{"wrong", "incorrect", "fail"}

// DefaultPhrases returns the built-in message table.
func DefaultPhrases() Phrases {
	return Phrases{
		Correct: []string{
			"Great listening!",
			"You caught that!",
			"Nice work!",
			"You're really hearing the difference",
			"You're getting good at this",
			"You nailed it!",
			"Well done!",
			"You got it!",
		},
		Streak: map[int]string{
			3:  "Three in a row!",
			5:  "You're on a roll!",
			7:  "Seven correct! You're mastering this!",
			10: "Ten in a row! Excellent!",
			15: "Fifteen! You're on fire!",
		},
		Supportive: []string{
			"That one is tricky. Let's hear it again",
			"These sounds are really similar, listen closely",
			"Good try! Want to hear the difference?",
			"Let's break that down together",
			"These are tough to tell apart. Try again",
			"Listen carefully to the difference",
			"That's a challenging one, let's practice",
			"You're building your listening skills",
		},
		Specific: map[Contrast]Specific{
			NewContrast("/θ/", "/f/"): {
				Message: "These both use your teeth, but /θ/ uses your tongue too",
				Tip:     `For "th" sound, put your tongue between your teeth`,
			},
			NewContrast("/b/", "/d/"): {
				Message: "Try feeling where your tongue is for each sound",
				Tip:     "/b/ uses your lips, /d/ uses your tongue on the roof of your mouth",
			},
			NewContrast("/m/", "/n/"): {
				Message: "Both are hummed through your nose",
				Tip:     "/m/ closes your lips, /n/ opens your mouth",
			},
			NewContrast("/p/", "/b/"): {
				Message: "Both use your lips. One is voiced, one isn't",
				Tip:     "Feel your throat for /b/, it vibrates",
			},
			NewContrast("/t/", "/d/"): {
				Message: "Both use your tongue behind your teeth",
				Tip:     "/d/ makes your throat vibrate, /t/ doesn't",
			},
			NewContrast("/k/", "/g/"): {
				Message: "Both use the back of your tongue",
				Tip:     "/g/ vibrates your throat, /k/ doesn't",
			},
			NewContrast("/f/", "/v/"): {
				Message: "Both use your teeth on your lip",
				Tip:     "/v/ vibrates your throat, /f/ doesn't",
			},
			NewContrast("/s/", "/z/"): {
				Message: "Both make a hissing sound",
				Tip:     "/z/ vibrates like a buzzing bee",
			},
		},
		Encouragement: []string{
			"You're building your listening skills",
			"Every practice makes you stronger",
			"These sounds take time and you're doing great",
			"You're training your brain to hear differences",
			"Keep going, you've got this",
			"Practice makes progress!",
			"You're getting better with each try",
		},
		Hints: [3][]string{
			{
				"Listen for the first sound",
				"Pay attention to where your tongue goes",
				"Notice which part of your mouth makes the sound",
			},
			{
				"Try saying both words out loud",
				"Feel the difference in your mouth",
				"One sound might feel more in the front of your mouth",
			},
			{
				"Let me play both words for you to compare",
				"Here's what makes them different...",
				"Watch where the sound is made",
			},
		},
	}
}

// All returns every message in the table.
func (p Phrases) All() []string {
	out := make([]string, 0, 64)
	out = append(out, p.Correct...)
	for _, msg := range p.Streak {
		out = append(out, msg)
	}
	out = append(out, p.Supportive...)
	for _, s := range p.Specific {
		out = append(out, s.Message, s.Tip)
	}
	out = append(out, p.Encouragement...)
	for _, level := range p.Hints {
		out = append(out, level...)
	}
	return out
}
