package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/logger"
	"github.com/spf13/cobra"
)

// ensureSignedIn runs the one-per-load session bootstrap and gates the
// command on a confirmed identity. A failed session check is not an error in
// itself; the command is simply treated as unauthenticated.
func ensureSignedIn(ctx context.Context, app *app) (domain.User, error) {
	if err := app.session.Bootstrap(ctx); err != nil {
		logger.Debug("session check failed", "error", err)
	}

	user, err := app.session.Require()
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: run 'intelliscan login' first", err)
	}

	return user, nil
}

func newLoginCmd(app *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			user, _ := app.session.Current()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	cmd.AddCommand(newLoginGoogleCmd(app))

	return cmd
}

func newLoginGoogleCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Sign in through the Google browser flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.LoginWithProvider(cmd.Context()); err != nil {
				return err
			}

			user, _ := app.session.Current()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
			return nil
		},
	}
}

func newSignupCmd(app *app) *cobra.Command {
	var email, password, fullName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.session.Signup(cmd.Context(), email, password, fullName); err != nil {
				return err
			}

			// Signup does not issue a session.
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Account created. Run 'intelliscan login' to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&fullName, "name", "", "Full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Load the cached credential so the backend call can target the
			// right session. A failed check still proceeds to logout.
			if err := app.session.Bootstrap(cmd.Context()); err != nil {
				logger.Debug("session check failed", "error", err)
			}

			// Local state is cleared even when the backend call fails; the
			// client must never stay stuck signed in.
			if err := app.session.Logout(cmd.Context()); err != nil {
				logger.Warn("backend logout failed", "error", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := ensureSignedIn(cmd.Context(), app)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (id %s)\n", user.FullName, user.Email, user.UserID)
			return nil
		},
	}
}

func newAvatarCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Manage the profile avatar",
	}

	cmd.AddCommand(newAvatarSetCmd(app))

	return cmd
}

func newAvatarSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <image-file>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read avatar image: %w", err)
			}

			encoded := base64.StdEncoding.EncodeToString(data)
			if err := app.session.UpdateAvatar(cmd.Context(), encoded); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Avatar updated.")
			return nil
		},
	}
}
