package cmd

import (
	"fmt"

	prefstoml "github.com/bnema/intelliscan-cli/internal/adapters/prefs/toml"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage local preferences",
		Long:  "Manages local preferences: theme, language, notifications and autosave. They are stored on this machine; no backend call is involved.",
	}

	cmd.AddCommand(
		newSettingsListCmd(app),
		newSettingsGetCmd(app),
		newSettingsSetCmd(app),
	)

	return cmd
}

func newSettingsListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := app.prefs.All()
			if err != nil {
				return err
			}

			for _, key := range prefstoml.Keys() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, all[key])
			}
			return nil
		},
	}
}

func newSettingsGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := app.prefs.Get(args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newSettingsSetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Update one preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.prefs.Set(args[0], args[1]); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}
