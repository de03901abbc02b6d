// Package main provides the CLI entrypoint for soundcheck.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/soundcheck/internal/catalog"
	"github.com/verte-zerg/soundcheck/internal/common"
	"github.com/verte-zerg/soundcheck/internal/config"
	"github.com/verte-zerg/soundcheck/internal/ledger"
	"github.com/verte-zerg/soundcheck/internal/model"
	"github.com/verte-zerg/soundcheck/internal/session"
	"github.com/verte-zerg/soundcheck/internal/speech"
	"github.com/verte-zerg/soundcheck/internal/stats"
	"github.com/verte-zerg/soundcheck/internal/store"
	"github.com/verte-zerg/soundcheck/internal/tui"
)

const (
	defaultUser        = "default"
	defaultMode        = string(model.ModePairs)
	defaultSpeechCmd   = "espeak-ng"
	defaultSpeechRate  = 1.0
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultCurveWindow = 5
	defaultStatsWidth  = 80
	saveTimeout        = 5 * time.Second
)

var (
	practiceUser        string
	practiceMode        string
	practiceDifficulty  string
	practiceAdaptive    bool
	practiceStreakBonus bool
	practiceCatalog     string
	practiceSpeech      bool
	practiceSpeechCmd   string
	practiceVoice       string
	practiceRate        float64
	practiceLogLevel    string

	statsUser        string
	statsCurveWindow int

	resetUser string
	resetYes  bool

	catalogFile string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "soundcheck",
		Short:         "Listening practice for minimal pairs, syllables and sounds",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceUser, "user", defaultUser, "learner profile name")
	rootCmd.Flags().StringVar(&practiceMode, "mode", defaultMode, "practice mode: pairs, syllables, sounds or structure")
	rootCmd.Flags().StringVar(&practiceDifficulty, "difficulty", "", "easy, medium or hard (default: all)")
	rootCmd.Flags().BoolVar(&practiceAdaptive, "adaptive", false, "pick difficulty from recent accuracy")
	rootCmd.Flags().BoolVar(&practiceStreakBonus, "streak-bonus", false, "award bonus points for streaks")
	rootCmd.Flags().StringVar(&practiceCatalog, "catalog", "", "path to a TOML catalog (default: built-in)")
	rootCmd.Flags().BoolVar(&practiceSpeech, "speech", true, "speak stimuli through the speech command")
	rootCmd.Flags().StringVar(&practiceSpeechCmd, "speech-cmd", defaultSpeechCmd, "text-to-speech program (espeak-ng or say)")
	rootCmd.Flags().StringVar(&practiceVoice, "voice", "", "speech voice name")
	rootCmd.Flags().Float64Var(&practiceRate, "rate", defaultSpeechRate, "base speech rate multiplier")
	rootCmd.Flags().StringVar(&practiceLogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCatalogCmd())

	return rootCmd
}

func resolveSettings(cmd *cobra.Command) (config.Settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "user", &practiceUser, fileCfg.Practice.User)
	applyStringConfig(cmd, "mode", &practiceMode, fileCfg.Practice.Mode)
	applyStringConfig(cmd, "difficulty", &practiceDifficulty, fileCfg.Practice.Difficulty)
	applyBoolConfig(cmd, "adaptive", &practiceAdaptive, fileCfg.Practice.Adaptive)
	applyBoolConfig(cmd, "streak-bonus", &practiceStreakBonus, fileCfg.Practice.StreakBonus)
	applyStringConfig(cmd, "catalog", &practiceCatalog, fileCfg.Practice.Catalog)
	applyBoolConfig(cmd, "speech", &practiceSpeech, fileCfg.Speech.Enabled)
	applyStringConfig(cmd, "speech-cmd", &practiceSpeechCmd, fileCfg.Speech.Command)
	applyStringConfig(cmd, "voice", &practiceVoice, fileCfg.Speech.Voice)
	applyFloatConfig(cmd, "rate", &practiceRate, fileCfg.Speech.Rate)
	applyStringConfig(cmd, "log-level", &practiceLogLevel, fileCfg.Log.Level)

	settings := config.Settings{
		Practice: model.Config{
			User:        strings.TrimSpace(practiceUser),
			Mode:        model.Mode(strings.ToLower(practiceMode)),
			Difficulty:  strings.ToLower(practiceDifficulty),
			Adaptive:    practiceAdaptive,
			StreakBonus: practiceStreakBonus,
			CatalogPath: practiceCatalog,
		},
		Speech: model.SpeechConfig{
			Command:  practiceSpeechCmd,
			BaseRate: practiceRate,
			Voice:    practiceVoice,
		},
		SpeechEnabled: practiceSpeech,
		Log: config.Logging{
			Level:  strings.ToLower(practiceLogLevel),
			Format: defaultLogFormat,
			File:   config.DefaultLogPath(),
		},
	}
	if fileCfg.Log.Format != nil {
		settings.Log.Format = *fileCfg.Log.Format
	}
	if fileCfg.Log.File != nil {
		settings.Log.File = *fileCfg.Log.File
	}
	if err := config.Validate(settings); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// setupLogging routes slog to the log file while the TUI owns the terminal.
func setupLogging(cfg config.Logging, toFile bool) (*slog.Logger, func(), error) {
	level, err := common.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if !toFile {
		return common.SetupLogger(os.Stderr, level, cfg.Format), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	closer := func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}
	return common.SetupLogger(f, level, cfg.Format), closer, nil
}

func loadCatalog(path string) (model.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func openStore() (*store.Store, func(), error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(settings.Log, true)
	if err != nil {
		return err
	}
	defer closeLog()

	cat, err := loadCatalog(settings.Practice.CatalogPath)
	if err != nil {
		return common.NewUserError("the catalog could not be loaded (check it with: soundcheck catalog --file PATH)", err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	user := settings.Practice.User
	syncOpts := []ledger.SyncerOption{ledger.WithLogger(logger)}
	l, err := ledger.Load(ctx, st, user)
	if err != nil {
		if !errors.Is(err, common.ErrStorageUnavailable) {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		common.LogError(err, "practicing without saved progress", common.Fields{"user": user})
		logErrln("warning: saved progress could not be loaded; nothing is saved until it can be read and merged")
		syncOpts = append(syncOpts, ledger.WithUnconfirmedLoad(st))
	}

	syncer := ledger.NewSyncer(l, st, user, syncOpts...)
	defer func() {
		saveCtx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := syncer.Close(saveCtx); err != nil {
			logErrf("failed to save progress: %v\n", err)
		}
	}()

	speaker, captions := newSpeaker(settings, logger)
	narrator := speech.NewNarrator(speaker, logger)
	defer narrator.Stop()

	sess, err := session.New(session.Options{
		Mode:        settings.Practice.Mode,
		Difficulty:  settings.Practice.Difficulty,
		Adaptive:    settings.Practice.Adaptive,
		StreakBonus: settings.Practice.StreakBonus,
	}, cat, l, narrator,
		session.WithNotifier(syncer),
		session.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	opts := []tui.Option{tui.WithLogger(logger)}
	if captions != nil {
		opts = append(opts, tui.WithCaptions(captions))
	}
	common.LogInfo("practice started", common.Fields{
		"user":       user,
		"mode":       settings.Practice.Mode,
		"difficulty": settings.Practice.Difficulty,
		"adaptive":   settings.Practice.Adaptive,
	})
	program := tea.NewProgram(tui.NewModel(sess, l, opts...), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// newSpeaker returns the external synthesizer, or a caption recorder when
// speech is off or the program is missing.
func newSpeaker(settings config.Settings, logger *slog.Logger) (speech.Speaker, *speech.Recorder) {
	if settings.SpeechEnabled {
		cmdSpeaker, err := speech.NewCommand(settings.Speech.Command, settings.Speech.Voice, settings.Speech.BaseRate)
		if err == nil {
			common.LogDebug("speech enabled", common.Fields{"program": cmdSpeaker.Program, "voice": cmdSpeaker.Voice})
			return cmdSpeaker, nil
		}
		logger.Warn("speech unavailable, showing captions", "error", err)
	}
	rec := &speech.Recorder{}
	return rec, rec
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsUser, "user", defaultUser, "learner profile name")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window for the session curve")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	if statsCurveWindow <= 0 {
		return fmt.Errorf("--curve-window must be > 0")
	}
	if _, _, err := setupLogging(config.Logging{Level: defaultLogLevel, Format: defaultLogFormat}, false); err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	report, err := stats.BuildReport(context.Background(), st, statsUser, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := report.Render(cmd.OutOrStdout(), statsCurveWindow, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultStatsWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultStatsWidth
	}
	return width
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all progress for a user",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().StringVar(&resetUser, "user", defaultUser, "learner profile name")
	cmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		logErrf("This erases all progress for %q. Re-run with --yes to confirm.\n", resetUser)
		return fmt.Errorf("reset not confirmed")
	}
	if _, _, err := setupLogging(config.Logging{Level: defaultLogLevel, Format: defaultLogFormat}, false); err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := context.Background()
	l, err := ledger.Load(ctx, st, resetUser)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}
	l.Reset()
	err = common.WithRetry(ctx, func() error {
		return st.SaveLedger(ctx, resetUser, l.Snapshot())
	}, common.RetryOptions{})
	if err != nil {
		return fmt.Errorf("failed to save reset: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Progress for %q was reset.\n", resetUser)
	return err
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List and validate practice content",
		Args:  cobra.NoArgs,
		RunE:  runCatalogCmd,
	}
	cmd.Flags().StringVar(&catalogFile, "file", "", "validate and list a TOML catalog instead of the built-in one")
	return cmd
}

func runCatalogCmd(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog(catalogFile)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	return renderCatalog(cmd.OutOrStdout(), cat)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func catalogTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderCatalog(w io.Writer, cat model.Catalog) error {
	pairRows := make([][]string, 0, len(cat.Pairs))
	for _, p := range cat.Pairs {
		pairRows = append(pairRows, []string{p.ID, strings.Join(p.Words, " / "), p.DifficultySound, p.Difficulty, p.Category})
	}
	syllableRows := make([][]string, 0, len(cat.Syllables))
	for _, s := range cat.Syllables {
		syllableRows = append(syllableRows, []string{s.Word, strings.Join(s.Syllables, "-"), s.BeatPattern(), s.Difficulty})
	}
	wordRows := make([][]string, 0, len(cat.Words))
	for _, word := range cat.Words {
		phonemes := make([]string, 0, len(word.Sounds))
		for _, snd := range word.Sounds {
			phonemes = append(phonemes, snd.Phoneme)
		}
		wordRows = append(wordRows, []string{word.Word, strings.Join(phonemes, " ")})
	}

	sections := []struct {
		title string
		tbl   *table.Table
	}{
		{fmt.Sprintf("Minimal pairs (%d)", len(cat.Pairs)), catalogTable([]string{"ID", "Words", "Contrast", "Difficulty", "Category"}, pairRows)},
		{fmt.Sprintf("Syllable words (%d)", len(cat.Syllables)), catalogTable([]string{"Word", "Syllables", "Beat", "Difficulty"}, syllableRows)},
		{fmt.Sprintf("Sound words (%d)", len(cat.Words)), catalogTable([]string{"Word", "Sounds"}, wordRows)},
	}
	for _, section := range sections {
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", section.title, section.tbl.Render()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# soundcheck configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# user = %q            # Learner profile name
# mode = %q              # pairs, syllables, sounds or structure
# difficulty = "easy"        # easy, medium or hard (default: all)
# adaptive = false           # Pick difficulty from recent accuracy
# streak-bonus = false       # Bonus points for streaks
# catalog = ""               # Path to a TOML catalog

[speech]
# enabled = true             # Speak stimuli aloud
# command = %q       # Text-to-speech program (espeak-ng or say)
# voice = ""                 # Voice name
# rate = %.1f                # Base rate multiplier

[log]
# level = %q             # debug, info, warn or error
# format = %q            # text or json
# file = ""                  # Log file used during practice
`,
		defaultUser,
		defaultMode,
		defaultSpeechCmd,
		defaultSpeechRate,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
