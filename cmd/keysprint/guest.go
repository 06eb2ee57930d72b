package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keysprint/internal/model"
	"github.com/verte-zerg/keysprint/internal/stats"
	"github.com/verte-zerg/keysprint/internal/theme"
)

var errNoGuest = errors.New("no guest profile (run: keysprint guest start)")

var (
	prefsTheme      string
	prefsSound      bool
	prefsAnimations bool
	showChart       bool
)

func newGuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Manage the local guest profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start a new guest profile, replacing any existing one",
		Args:  cobra.NoArgs,
		RunE:  runGuestStartCmd,
	})
	show := &cobra.Command{
		Use:   "show",
		Short: "Show guest stats and preferences",
		Args:  cobra.NoArgs,
		RunE:  runGuestShowCmd,
	}
	show.Flags().BoolVar(&showChart, "chart", false, "plot the WPM and accuracy history")
	cmd.AddCommand(show)
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the guest profile",
		Args:  cobra.NoArgs,
		RunE:  runGuestClearCmd,
	})
	prefs := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update guest preferences",
		Args:  cobra.NoArgs,
		RunE:  runGuestPrefsCmd,
	}
	prefs.Flags().StringVar(&prefsTheme, "theme", "", "theme: system, light or dark")
	prefs.Flags().BoolVar(&prefsSound, "sound", true, "ring the bell on mistakes")
	prefs.Flags().BoolVar(&prefsAnimations, "animations", true, "show the live WPM ticker")
	cmd.AddCommand(prefs)
	return cmd
}

func runGuestStartCmd(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		if prev, ok := e.guest.Profile(); ok {
			e.log.Warn("replacing existing guest profile")
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Replacing guest %s (%d tests)\n", prev.ID, prev.TypingStats.Len())
		}
		p, err := e.guest.CreateGuestUser(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Started guest %s\n", p.ID)
		return err
	})
}

func runGuestShowCmd(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(_ context.Context, e *env) error {
		p, ok := e.guest.Profile()
		if !ok {
			return errNoGuest
		}
		width := terminalWidth(os.Stdout)
		if err := stats.RenderGuest(cmd.OutOrStdout(), p, width); err != nil {
			return err
		}
		if !showChart {
			return nil
		}
		styles := theme.NewStyles(theme.Resolve(p.Preferences.Theme))
		if _, err := fmt.Fprintln(cmd.OutOrStdout()); err != nil {
			return err
		}
		return stats.RenderGuestChart(cmd.OutOrStdout(), p, width, styles.Correct, styles.CurrentWord)
	})
}

func runGuestClearCmd(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		if !e.guest.IsGuest() {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No guest profile to clear.")
			return err
		}
		if err := e.guest.ClearGuestData(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Guest data cleared.")
		return err
	})
}

func runGuestPrefsCmd(cmd *cobra.Command, _ []string) error {
	patch, err := prefsPatch(cmd)
	if err != nil {
		return err
	}
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		if !e.guest.IsGuest() {
			return errNoGuest
		}
		if err := e.guest.UpdateGuestPreferences(ctx, patch); err != nil {
			return err
		}
		p, _ := e.guest.Profile()
		prefs := p.Preferences
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "theme=%s sound=%t animations=%t\n",
			prefs.Theme, prefs.SoundEnabled, prefs.AnimationsEnabled)
		return err
	})
}

// prefsPatch builds a patch from the flags the user actually set.
func prefsPatch(cmd *cobra.Command) (model.PreferencesPatch, error) {
	var patch model.PreferencesPatch
	if cmd.Flags().Changed("theme") {
		t := model.Theme(prefsTheme)
		if !t.Valid() {
			return patch, fmt.Errorf("--theme must be one of system, light, dark")
		}
		patch.Theme = &t
	}
	if cmd.Flags().Changed("sound") {
		v := prefsSound
		patch.SoundEnabled = &v
	}
	if cmd.Flags().Changed("animations") {
		v := prefsAnimations
		patch.AnimationsEnabled = &v
	}
	return patch, nil
}

func newBestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bests",
		Short: "Show personal bests",
		Args:  cobra.NoArgs,
		RunE:  runBestsCmd,
	}
}

func runBestsCmd(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		list, err := e.bests.List(ctx)
		if err != nil {
			return err
		}
		return stats.RenderBests(cmd.OutOrStdout(), list)
	})
}

func newAchievementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "List achievements and which the guest has unlocked",
		Args:  cobra.NoArgs,
		RunE:  runAchievementsCmd,
	}
}

func runAchievementsCmd(cmd *cobra.Command, _ []string) error {
	return withEnv(cmd, func(_ context.Context, e *env) error {
		var unlocked []string
		if p, ok := e.guest.Profile(); ok {
			unlocked = p.Achievements
		}
		return stats.RenderAchievements(cmd.OutOrStdout(), unlocked)
	})
}
