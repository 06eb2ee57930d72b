// Package main provides the CLI entrypoint for keysprint.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/keysprint/internal/config"
	"github.com/verte-zerg/keysprint/internal/generator"
	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/tui"
	"github.com/verte-zerg/keysprint/internal/wordlist"
)

const (
	defaultLang  = "en"
	defaultWords = 25
	defaultCaps  = 0.5
	defaultPunct = 0.5
)

const defaultPunctSet = ".,!?;:\"'()-"

var (
	testLang     string
	testWords    int
	testCaps     float64
	testPunct    float64
	testPunctSet string

	logLevel  string
	dbPath    string
	ephemeral bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keysprint",
		Short:         "Terminal typing speed test",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTestCmd,
	}

	rootCmd.Flags().StringVar(&testLang, "lang", defaultLang, "language code")
	rootCmd.Flags().IntVar(&testWords, "words", defaultWords, "words per test")
	rootCmd.Flags().Float64Var(&testCaps, "caps", defaultCaps, "probability of capitalized first letter (0-1)")
	rootCmd.Flags().Float64Var(&testPunct, "punct", defaultPunct, "punctuation probability per word (0-1)")
	rootCmd.Flags().StringVar(&testPunctSet, "punct-set", defaultPunctSet, "punctuation set")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the local database")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep all data in a temporary database")

	rootCmd.AddCommand(newGuestCmd())
	rootCmd.AddCommand(newBestsCmd())
	rootCmd.AddCommand(newAchievementsCmd())
	rootCmd.AddCommand(newSignUpCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newResetPasswordCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runTestCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "lang", &testLang, fileCfg.Test.Lang)
	applyIntConfig(cmd, "words", &testWords, fileCfg.Test.Words)
	applyFloatConfig(cmd, "caps", &testCaps, fileCfg.Test.CapsPct)
	applyFloatConfig(cmd, "punct", &testPunct, fileCfg.Test.PunctPct)
	applyStringConfig(cmd, "punct-set", &testPunctSet, fileCfg.Test.PunctSet)

	cfg := model.TestConfig{
		Lang:     testLang,
		Words:    testWords,
		CapsPct:  testCaps,
		PunctPct: testPunct,
		PunctSet: testPunctSet,
	}
	if err := validateTestConfig(cfg); err != nil {
		return err
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	wordPath := config.DefaultWordListPath(cfg.Lang)
	words, fellBack, err := wordlist.Resolve(wordPath, cfg.Lang)
	if err != nil {
		return fmt.Errorf("failed to load word list %s: %w", wordPath, err)
	}
	if fellBack && cfg.Lang != defaultLang {
		e.log.Warn("word list not found, using built-in English list",
			zap.String("lang", cfg.Lang), zap.String("path", wordPath))
	}
	if fellBack {
		cfg.Lang = defaultLang
	}

	m := tui.NewModel(tui.Deps{
		Recorder: e.session,
		Bests:    e.bests,
		Gen:      generator.New(),
		Words:    words,
		Config:   cfg,
		Prefs:    e.session.Preferences(),
		Identity: e.session.Identity(),
		Log:      e.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func validateTestConfig(cfg model.TestConfig) error {
	if cfg.Words <= 0 {
		return fmt.Errorf("--words must be > 0")
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("--caps must be between 0 and 1")
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("--punct must be between 0 and 1")
	}
	if cfg.PunctSet == "" {
		return fmt.Errorf("--punct-set must not be empty")
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
