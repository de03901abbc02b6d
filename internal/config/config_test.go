package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/model"
)

func validSettings() Settings {
	return Settings{
		Practice: model.Config{User: "default", Mode: model.ModePairs},
		Speech:   model.SpeechConfig{Command: "espeak-ng", BaseRate: 1},
		Log:      Logging{Level: "info", Format: "text"},
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Mode)
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
mode = "syllables"
streak-bonus = true

[speech]
rate = 1.5
voice = "en-us"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Practice.Mode)
	assert.Equal(t, "syllables", *cfg.Practice.Mode)
	require.NotNil(t, cfg.Practice.StreakBonus)
	assert.True(t, *cfg.Practice.StreakBonus)
	assert.Nil(t, cfg.Practice.Adaptive)
	require.NotNil(t, cfg.Speech.Rate)
	assert.InDelta(t, 1.5, *cfg.Speech.Rate, 1e-9)
	require.NotNil(t, cfg.Log.Level)
	assert.Equal(t, "debug", *cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[practice]\nlang = \"en\"\n"), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "practice.lang")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(validSettings()))

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"unknown mode", func(s *Settings) { s.Practice.Mode = "karaoke" }, "practice.mode"},
		{"unknown difficulty", func(s *Settings) { s.Practice.Difficulty = "extreme" }, "practice.difficulty"},
		{"missing user", func(s *Settings) { s.Practice.User = "" }, "practice.user is required"},
		{"zero rate", func(s *Settings) { s.Speech.BaseRate = 0 }, "speech.baserate"},
		{"bad log format", func(s *Settings) { s.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			err := Validate(s)
			require.ErrorIs(t, err, common.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	assert.Equal(t, "/cfg/soundcheck/config.toml", DefaultConfigPath())
	assert.Equal(t, "/data/soundcheck/soundcheck.db", DefaultDBPath())
	assert.Equal(t, "/data/soundcheck/soundcheck.log", DefaultLogPath())
}
