package cmd

import (
	"context"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newMathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "math <image>...",
		Short: "Recognize and solve handwritten or printed equations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			store := application.NewResultStore(ports.SystemClock{})
			defer store.Close()

			submitFiles(store, args, func(name string, data []byte) application.SubmitFunc {
				return func(ctx context.Context) (domain.Payload, error) {
					return app.api.SolveMath(ctx, name, data)
				}
			})

			return waitAndRender(cmd, store, "Math Solver")
		},
	}
}
