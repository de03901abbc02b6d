package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Narrator plays one sequence at a time. Starting a new one cancels the current one.
type Narrator struct {
	speaker Speaker
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNarrator wraps a Speaker.
func NewNarrator(speaker Speaker, logger *slog.Logger) *Narrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Narrator{speaker: speaker, logger: logger, sleep: sleepCtx}
}

// Play starts seq in the background. The returned channel receives the
// sequence result once and is then closed.
func (n *Narrator) Play(seq Sequence) <-chan error {
	done := make(chan error, 1)

	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.wg.Add(1)
	n.mu.Unlock()

	go func() {
		defer n.wg.Done()
		defer close(done)
		defer cancel()
		err := n.run(ctx, seq)
		if err != nil && !errors.Is(err, context.Canceled) {
			n.logger.Warn("speech playback failed", "error", err)
		}
		done <- err
	}()
	return done
}

// Stop cancels the current sequence and waits for it to finish.
func (n *Narrator) Stop() {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Narrator) run(ctx context.Context, seq Sequence) error {
	for _, step := range seq {
		if step.Text != "" {
			if err := n.speaker.Speak(ctx, step.Utterance); err != nil {
				return err
			}
		}
		if step.PauseAfter > 0 {
			if err := n.sleep(ctx, step.PauseAfter); err != nil {
				return err
			}
		}
	}
	return ctx.Err()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
