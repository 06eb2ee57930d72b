package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keysprint/internal/auth"
	"github.com/verte-zerg/keysprint/internal/authui"
	"github.com/verte-zerg/keysprint/internal/theme"
)

var (
	accountEmail  string
	resetEmail    string
	resetToken    string
	resetPassword string
)

func newSignUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCredentialsCmd(cmd, "Create account", func(a *auth.Local) authui.SubmitFunc {
				return a.SignUp
			})
		},
	}
	cmd.Flags().StringVar(&accountEmail, "email", "", "email address")
	return cmd
}

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCredentialsCmd(cmd, "Sign in", func(a *auth.Local) authui.SubmitFunc {
				return a.SignIn
			})
		},
	}
	cmd.Flags().StringVar(&accountEmail, "email", "", "email address")
	return cmd
}

// runCredentialsCmd shows the credentials form on a terminal, or reads the
// email and password as two lines from stdin otherwise.
func runCredentialsCmd(cmd *cobra.Command, title string, pick func(*auth.Local) authui.SubmitFunc) error {
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		events, cancel := e.auth.Subscribe()
		defer cancel()
		submit := pick(e.auth)

		if !isTerminal(os.Stdin) {
			email, password, err := readCredentials(cmd.InOrStdin(), accountEmail)
			if err != nil {
				return err
			}
			if _, err := submit(ctx, email, password); err != nil {
				return fmt.Errorf("%s", auth.UserMessage(err))
			}
			return announce(cmd.OutOrStdout(), events)
		}

		styles := theme.NewStyles(theme.Resolve(e.session.Preferences().Theme))
		form := authui.New(title, accountEmail, styles, submit)
		if _, err := tea.NewProgram(form, tea.WithContext(ctx)).Run(); err != nil {
			return fmt.Errorf("failed to run form: %w", err)
		}
		if form.Aborted() {
			return nil
		}
		return announce(cmd.OutOrStdout(), events)
	})
}

func readCredentials(r io.Reader, email string) (string, string, error) {
	scanner := bufio.NewScanner(r)
	next := func(what string) (string, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read %s: %w", what, err)
			}
			return "", fmt.Errorf("missing %s on stdin", what)
		}
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if email == "" {
		line, err := next("email")
		if err != nil {
			return "", "", err
		}
		email = strings.TrimSpace(line)
	}
	password, err := next("password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// announce prints the pending session events without blocking.
func announce(w io.Writer, events <-chan auth.Event) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintln(w, describeEvent(ev)); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func describeEvent(ev auth.Event) string {
	switch ev.Type {
	case auth.EventSignedIn:
		return "Signed in as " + ev.Session.Email
	case auth.EventPasswordRecovery:
		return "Password updated. Signed in as " + ev.Session.Email
	case auth.EventSignedOut:
		return "Signed out."
	default:
		return string(ev.Type)
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if _, ok := e.auth.CurrentSession(); !ok {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
					return err
				}
				events, cancel := e.auth.Subscribe()
				defer cancel()
				if err := e.auth.SignOut(ctx); err != nil {
					return fmt.Errorf("%s", auth.UserMessage(err))
				}
				return announce(cmd.OutOrStdout(), events)
			})
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a reset token, or set a new password with --token",
		Args:  cobra.NoArgs,
		RunE:  runResetPasswordCmd,
	}
	cmd.Flags().StringVar(&resetEmail, "email", "", "account email to send a reset token to")
	cmd.Flags().StringVar(&resetToken, "token", "", "reset token")
	cmd.Flags().StringVar(&resetPassword, "password", "", "new password (used with --token)")
	return cmd
}

func runResetPasswordCmd(cmd *cobra.Command, _ []string) error {
	if resetToken == "" && resetEmail == "" {
		return fmt.Errorf("--email or --token is required")
	}
	if resetToken != "" && resetPassword == "" {
		return fmt.Errorf("--password is required with --token")
	}
	return withEnv(cmd, func(ctx context.Context, e *env) error {
		if resetToken == "" {
			if err := e.auth.ResetPassword(ctx, resetEmail); err != nil {
				return fmt.Errorf("%s", auth.UserMessage(err))
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "If an account exists for that email, a reset token has been sent.")
			return err
		}
		events, cancel := e.auth.Subscribe()
		defer cancel()
		if _, err := e.auth.CompletePasswordReset(ctx, resetToken, resetPassword); err != nil {
			return fmt.Errorf("%s", auth.UserMessage(err))
		}
		return announce(cmd.OutOrStdout(), events)
	})
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account or guest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, func(_ context.Context, e *env) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), e.session.Identity())
				return err
			})
		},
	}
}
