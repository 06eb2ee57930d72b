package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keysprint/internal/config"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}
	editor := editorCommand(path)
	editor.Stdin = os.Stdin
	editor.Stdout = cmd.OutOrStdout()
	editor.Stderr = cmd.ErrOrStderr()
	if err := editor.Run(); err != nil {
		return fmt.Errorf("failed to open editor %s: %w", editor.Path, err)
	}
	return nil
}

// editorCommand opens path in $VISUAL, then $EDITOR, then vi.
func editorCommand(path string) *exec.Cmd {
	args := []string{"vi"}
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			args = fields
			break
		}
	}
	return exec.Command(args[0], append(args[1:], path)...)
}

// ensureConfigFile writes the commented template when path does not exist.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keysprint configuration
# Uncomment a value to enable it. CLI flags override config values,
# and %s_* environment variables (or %s) override this file.

[test]
# lang = %q               # Language code
# words = %d              # Words per test
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q          # Punctuation set

[log]
# level = "warn"          # debug, info, warn or error

[storage]
# path = %q
`,
		"KEYSPRINT",
		config.DefaultEnvPath(),
		defaultLang,
		defaultWords,
		defaultCaps,
		defaultPunct,
		defaultPunctSet,
		config.DefaultDBPath(),
	)
}
