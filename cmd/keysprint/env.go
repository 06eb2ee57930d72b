package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/keysprint/internal/app"
	"github.com/verte-zerg/keysprint/internal/auth"
	"github.com/verte-zerg/keysprint/internal/bests"
	"github.com/verte-zerg/keysprint/internal/config"
	"github.com/verte-zerg/keysprint/internal/guest"
	"github.com/verte-zerg/keysprint/internal/logging"
	"github.com/verte-zerg/keysprint/internal/store"
)

const defaultTableWidth = 80

// env holds everything a command needs once storage is open.
type env struct {
	log     *zap.Logger
	st      *store.Store
	auth    *auth.Local
	guest   *guest.Store
	bests   *bests.Ranking
	session *app.Session
	tmpDir  string
}

// loadFileConfig reads dotenv files, the TOML config and KEYSPRINT_*
// variables, then applies the shared persistent flags.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	if err := config.LoadEnv(config.DefaultEnvPath(), ".env"); err != nil {
		return config.FileConfig{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplyEnv(&fileCfg); err != nil {
		return config.FileConfig{}, err
	}
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Storage.Path)
	return fileCfg, nil
}

func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	log, err := logging.New(logLevel, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	e := &env{log: log}

	path := dbPath
	if ephemeral {
		e.tmpDir, err = os.MkdirTemp("", "keysprint-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
		path = filepath.Join(e.tmpDir, "keysprint.db")
	} else if path == "" {
		path = config.DefaultDBPath()
	}
	log.Debug("opening database", zap.String("path", path))

	e.st, err = store.Open(path)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	e.auth, err = auth.NewLocal(ctx, e.st.DB(), e.st,
		auth.WithLogger(log),
		auth.WithMailer(printMailer(cmd.ErrOrStderr())),
	)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to start auth: %w", err)
	}
	e.guest, err = guest.Open(ctx, e.st, guest.WithLogger(log))
	if err != nil {
		e.close()
		return nil, fmt.Errorf("failed to load guest profile: %w", err)
	}
	e.bests = bests.New(e.st, bests.WithLogger(log))
	e.session = app.New(e.guest, e.bests, e.auth, log)
	return e, nil
}

func (e *env) close() {
	if e.auth != nil {
		_ = e.auth.Close()
	}
	if e.st != nil {
		if err := e.st.Close(); err != nil {
			e.log.Error("failed to close db", zap.Error(err))
		}
	}
	if e.tmpDir != "" {
		_ = os.RemoveAll(e.tmpDir)
	}
	_ = e.log.Sync()
}

// withEnv loads config, opens storage and runs fn.
func withEnv(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	return fn(cmd.Context(), e)
}

// printMailer delivers reset tokens by printing them, since there is no
// outbound mail in a local install.
func printMailer(w io.Writer) auth.Mailer {
	return auth.MailerFunc(func(_ context.Context, email, token string) error {
		_, err := fmt.Fprintf(w, "Password reset token for %s (valid %s):\n%s\n", email, auth.ResetTokenTTL, token)
		return err
	})
}

func terminalWidth(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return defaultTableWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultTableWidth
	}
	return width
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
