// Package adapt maps accuracy history to presentation policy.
package adapt

import "github.com/verte-zerg/soundcheck/internal/model"

// MinAttempts is the cold-start threshold. Fewer attempts keep the defaults.
const MinAttempts = 3

// Difficulty thresholds.
const (
	HardAccuracy   = 0.8
	MediumAccuracy = 0.6
)

// Speech rates, as multipliers of the base narration rate.
const (
	RateDefault     = 0.7
	RateExaggerated = 0.4
	RateConfident   = 0.8

	ExaggerateBelow = 0.5
	ConfidentAt     = 0.8
)

// Noise is only added once an item is reliably mastered.
const (
	NoiseMinAttempts = 10
	NoiseMinAccuracy = 0.8
)

// Break thresholds.
const (
	BreakAfterMinutes   = 20
	BreakBelowAccuracy  = 0.4
	RecentAttemptWindow = 5
)

// Speech modes.
const (
	SpeechNormal      = "normal"
	SpeechExaggerated = "exaggerated"
	SpeechNoise       = "noise"
)

// Encouragement levels, from least to most support.
const (
	LevelCelebrate  = "celebrate"
	LevelGentle     = "gentle"
	LevelSupportive = "supportive"
	LevelStrong     = "strong"
)

// RecommendDifficulty raises the bar for strong items and eases it for weak ones.
func RecommendDifficulty(accuracy float64, totalAttempts int) string {
	switch {
	case totalAttempts < MinAttempts:
		return model.DifficultyMedium
	case accuracy >= HardAccuracy:
		return model.DifficultyHard
	case accuracy >= MediumAccuracy:
		return model.DifficultyMedium
	default:
		return model.DifficultyEasy
	}
}

// SpeechRate is a presentation recommendation.
type SpeechRate struct {
	Rate   float64
	Mode   string
	Reason string
}

// RecommendSpeechRate slows narration down for items the learner struggles with.
func RecommendSpeechRate(accuracy float64, totalAttempts int) SpeechRate {
	switch {
	case totalAttempts < MinAttempts:
		return SpeechRate{Rate: RateDefault, Mode: SpeechNormal, Reason: "Starting with normal speed"}
	case accuracy < ExaggerateBelow:
		return SpeechRate{Rate: RateExaggerated, Mode: SpeechExaggerated, Reason: "Slowing down to help distinguish sounds"}
	case accuracy >= ConfidentAt:
		return SpeechRate{Rate: RateConfident, Mode: SpeechNormal, Reason: "Great progress! Trying normal speed"}
	default:
		return SpeechRate{Rate: RateDefault, Mode: SpeechNormal, Reason: "Maintaining steady pace"}
	}
}

// ShouldAddNoise reports whether background noise should be introduced.
func ShouldAddNoise(accuracy float64, totalAttempts int) bool {
	return totalAttempts >= NoiseMinAttempts && accuracy >= NoiseMinAccuracy
}

// Intensity lists the support affordances to show after an answer.
type Intensity struct {
	ShowHint       bool
	ShowComparison bool
	ShowTip        bool
	Level          string
}

// Affordances counts the enabled flags.
func (i Intensity) Affordances() int {
	n := 0
	for _, on := range []bool{i.ShowHint, i.ShowComparison, i.ShowTip} {
		if on {
			n++
		}
	}
	return n
}

// FeedbackIntensity escalates support as attempts on the same item grow.
func FeedbackIntensity(attempts int, correct bool) Intensity {
	switch {
	case correct:
		return Intensity{Level: LevelCelebrate}
	case attempts <= 1:
		return Intensity{Level: LevelGentle}
	case attempts == 2:
		return Intensity{ShowHint: true, ShowComparison: true, Level: LevelSupportive}
	default:
		return Intensity{ShowHint: true, ShowComparison: true, ShowTip: true, Level: LevelStrong}
	}
}

// StreakBonus returns extra points for a streak.
func StreakBonus(streak int) int {
	switch {
	case streak < 3:
		return 0
	case streak < 5:
		return 5
	case streak < 10:
		return 10
	default:
		return 20
	}
}

// BreakAdvice says whether the learner should pause.
type BreakAdvice struct {
	ShouldBreak bool
	Reason      string
}

// ShouldTakeBreak suggests a pause after a long session or a run of misses.
func ShouldTakeBreak(sessionMinutes, recentAccuracy float64) BreakAdvice {
	if sessionMinutes > BreakAfterMinutes {
		return BreakAdvice{ShouldBreak: true, Reason: "Great work! Time for a quick break."}
	}
	if recentAccuracy < BreakBelowAccuracy {
		return BreakAdvice{ShouldBreak: true, Reason: "Let's take a break and come back fresh."}
	}
	return BreakAdvice{}
}

// RecentAccuracy is the share of correct answers among the last RecentAttemptWindow results.
// With no results it returns 1.
func RecentAccuracy(results []bool) float64 {
	if len(results) > RecentAttemptWindow {
		results = results[len(results)-RecentAttemptWindow:]
	}
	if len(results) == 0 {
		return 1
	}
	correct := 0
	for _, ok := range results {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(results))
}
