package speech

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Words per minute of espeak-ng at rate 1.0.
const baseWPM = 175

// Command speaks through an external synthesizer such as espeak-ng or say.
type Command struct {
	Program  string
	Voice    string
	BaseRate float64
}

// NewCommand returns a Command speaker, or an error when program is not on PATH.
func NewCommand(program, voice string, baseRate float64) (*Command, error) {
	if _, err := exec.LookPath(program); err != nil {
		return nil, fmt.Errorf("speech program %q not found: %w", program, err)
	}
	if baseRate <= 0 {
		baseRate = 1
	}
	return &Command{Program: program, Voice: voice, BaseRate: baseRate}, nil
}

// Speak implements Speaker.
func (c *Command) Speak(ctx context.Context, u Utterance) error {
	cmd := exec.CommandContext(ctx, c.Program, c.Args(u)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run %s: %w: %s", c.Program, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Args builds the command line for an utterance.
func (c *Command) Args(u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = DefaultOptions().Rate
	}
	base := c.BaseRate
	if base <= 0 {
		base = 1
	}
	wpm := strconv.Itoa(int(math.Round(baseWPM * rate * base)))

	if filepath.Base(c.Program) == "say" {
		args := []string{"-r", wpm}
		if c.Voice != "" {
			args = append(args, "-v", c.Voice)
		}
		return append(args, "--", u.Text)
	}

	pitch := u.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	volume := u.Volume
	if volume <= 0 {
		volume = 1
	}
	args := []string{
		"-s", wpm,
		"-p", strconv.Itoa(clamp(int(math.Round(50*pitch)), 0, 99)),
		"-a", strconv.Itoa(clamp(int(math.Round(100*volume)), 0, 200)),
	}
	if c.Voice != "" {
		args = append(args, "-v", c.Voice)
	}
	return append(args, "--", u.Text)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
