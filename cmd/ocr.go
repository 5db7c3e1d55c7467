package cmd

import (
	"context"
	"fmt"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newOCRCmd(app *app) *cobra.Command {
	var mode string
	var noAICorrection bool

	cmd := &cobra.Command{
		Use:   "ocr <file>...",
		Short: "Extract text from scanned documents and handwritten notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			ocrMode, err := resolveOCRMode(mode)
			if err != nil {
				return err
			}

			store := application.NewResultStore(ports.SystemClock{})
			defer store.Close()

			submitFiles(store, args, func(name string, data []byte) application.SubmitFunc {
				return func(ctx context.Context) (domain.Payload, error) {
					return app.api.ExtractText(ctx, name, data, ocrMode, !noAICorrection)
				}
			})

			if err := waitAndRender(cmd, store, "Scan & OCR"); err != nil {
				return err
			}
			return saveOutputs(cmd, app, store.Snapshot(), "")
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "printed", "Recognition mode: printed or handwritten")
	cmd.Flags().BoolVar(&noAICorrection, "no-ai-correction", false, "Skip the AI post-correction pass")

	return cmd
}

// resolveOCRMode maps the user-facing mode names onto the backend's
// recognition modes: printed text uses the standard pass, handwriting the
// high-accuracy one.
func resolveOCRMode(mode string) (domain.OCRMode, error) {
	switch mode {
	case "printed", string(domain.OCRModeStandard):
		return domain.OCRModeStandard, nil
	case "handwritten", string(domain.OCRModeHighAccuracy):
		return domain.OCRModeHighAccuracy, nil
	default:
		return "", fmt.Errorf("unknown ocr mode %q (expected printed or handwritten)", mode)
	}
}
