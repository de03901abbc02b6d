// Package speech presents stimuli through a text-to-speech backend.
package speech

import (
	"context"
	"sync"
	"time"
)

// Options shape one utterance. Rate is a multiplier of the base narration speed.
type Options struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultOptions is normal narration.
func DefaultOptions() Options {
	return Options{Rate: 0.7, Pitch: 1, Volume: 1}
}

// Utterance is text plus how to say it.
type Utterance struct {
	Text string
	Options
}

// Step is one utterance of a sequence followed by a pause.
type Step struct {
	Utterance
	PauseAfter time.Duration
}

// Sequence is played serially.
type Sequence []Step

// Say builds a one-step sequence.
func Say(text string, opts Options) Sequence {
	return Sequence{{Utterance: Utterance{Text: text, Options: opts}}}
}

// Speaker voices a single utterance, blocking until done or ctx ends.
type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
}

// Silent discards everything.
type Silent struct{}

// Speak implements Speaker.
func (Silent) Speak(context.Context, Utterance) error {
	return nil
}

// Recorder keeps every utterance it is asked to speak.
type Recorder struct {
	mu     sync.Mutex
	spoken []Utterance
}

// Speak implements Speaker.
func (r *Recorder) Speak(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, u)
	return nil
}

// Spoken returns a copy of the recorded utterances.
func (r *Recorder) Spoken() []Utterance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Utterance(nil), r.spoken...)
}

// Last returns the most recent utterance.
func (r *Recorder) Last() (Utterance, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.spoken) == 0 {
		return Utterance{}, false
	}
	return r.spoken[len(r.spoken)-1], true
}

// Reset forgets recorded utterances.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = nil
}
