package cmd

import (
	"context"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newSketchCmd(app *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "sketch <image>...",
		Short: "Vectorize sketches into SVG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			store := application.NewResultStore(ports.SystemClock{})
			defer store.Close()

			submitFiles(store, args, func(name string, data []byte) application.SubmitFunc {
				return func(ctx context.Context) (domain.Payload, error) {
					return app.api.VectorizeSketch(ctx, name, data)
				}
			})

			if err := waitAndRender(cmd, store, "Sketch to SVG"); err != nil {
				return err
			}
			return saveOutputs(cmd, app, store.Snapshot(), outDir)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Directory to save the SVG files into")

	return cmd
}
