package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/intelliscan-cli/internal/adapters/render/carousel"
	"github.com/bnema/intelliscan-cli/internal/adapters/render/histlist"
	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/logger"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage past results",
	}

	cmd.AddCommand(
		newHistoryListCmd(app),
		newHistoryShowCmd(app),
		newHistoryDeleteCmd(app),
	)

	return cmd
}

func newHistoryListCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past results, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			records, err := app.api.History(cmd.Context(), domain.ToolKind(kind))
			if err != nil {
				// History failures degrade to an empty view rather than a
				// command failure.
				logger.Warn("fetch history failed", "error", err)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No history available.")
				return nil
			}

			view, err := histlist.Render(records, histlist.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Filter by tool type: ocr, math, sketch, speech, pdf")

	return cmd
}

func newHistoryShowCmd(app *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Open past results focused on one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			store := application.NewResultStore(ports.SystemClock{})
			defer store.Close()

			fetch := func(ctx context.Context) ([]domain.HistoryRecord, error) {
				return app.api.History(ctx, domain.ToolKind(kind))
			}

			if err := store.LoadHistory(cmd.Context(), fetch, domain.EntryID(args[0])); err != nil {
				logger.Warn("load history failed", "error", err)
			}

			if interactiveTerminal(cmd) {
				return carousel.Browse(cmd.Context(), store, carousel.BrowseOptions{
					Title:        "History",
					MaxBodyLines: resultBodyLines,
					OnDelete: func(id domain.EntryID) error {
						return app.api.DeleteHistory(cmd.Context(), string(id))
					},
				})
			}

			view, err := carousel.Render(store.Snapshot(), carousel.RenderOptions{
				Title:        "History",
				MaxBodyLines: resultBodyLines,
			})
			if err != nil {
				return fmt.Errorf("render results: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Filter by tool type: ocr, math, sketch, speech, pdf")

	return cmd
}

func newHistoryDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a past result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			if err := app.api.DeleteHistory(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
			return nil
		},
	}
}
