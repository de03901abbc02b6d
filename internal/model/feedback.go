package model

// FeedbackType classifies a composed feedback result.
type FeedbackType string

// Feedback types.
const (
	FeedbackCorrect   FeedbackType = "correct"
	FeedbackIncorrect FeedbackType = "incorrect"
)

// Tone of a feedback message.
type Tone string

// Feedback tones. There is no punitive tone.
const (
	ToneEncouraging Tone = "encouraging"
	ToneSupportive  Tone = "supportive"
)

// FeedbackResult is the transient outcome shown after an answer.
type FeedbackResult struct {
	Type       FeedbackType
	Message    string
	Tone       Tone
	ShowReplay bool
	ShowHint   bool
	ShowTip    bool
	Suggestion string
	Tip        string
	Attempts   int
}
