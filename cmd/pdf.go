package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bnema/intelliscan-cli/internal/adapters/api"
	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/spf13/cobra"
)

func newPDFCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Merge, compress, split, convert, protect, unlock, rotate and redact PDFs",
	}

	cmd.AddCommand(
		newPDFOpCmd(app, domain.PDFMerge, "merge <pdf>...", "Merge PDFs into one document", true),
		newPDFOpCmd(app, domain.PDFCompress, "compress <pdf>", "Compress a PDF", false),
		newPDFOpCmd(app, domain.PDFSplit, "split <pdf>", "Split a PDF into pages", false),
		newPDFOpCmd(app, domain.PDFImageToPDF, "image-to-pdf <image>...", "Convert images into a PDF", true),
		newPDFConvertCmd(app),
		newPDFPasswordCmd(app, domain.PDFUnlock, "unlock <pdf>", "Remove a PDF password"),
		newPDFRotateCmd(app),
		newPDFPasswordCmd(app, domain.PDFProtect, "protect <pdf>", "Password-protect a PDF"),
		newPDFRedactCmd(app),
	)

	return cmd
}

type pdfRun struct {
	outDir string
	hosted bool
}

func (r *pdfRun) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.outDir, "out", "o", "", "Directory to save the result into")
	cmd.Flags().BoolVar(&r.hosted, "hosted", false, "Route through the backend's hosted PDF provider")
}

// run submits the operation and renders the result. Multi-input operations
// (merge, image-to-pdf) produce a single combined entry; everything else gets
// one entry per input file.
func (r *pdfRun) run(cmd *cobra.Command, app *app, op domain.PDFOp, args []string, multi bool, params api.PDFParams) error {
	if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
		return err
	}

	params.UseHostedService = r.hosted

	store := application.NewResultStore(ports.SystemClock{})
	defer store.Close()

	if multi {
		files, err := readPDFFiles(args)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s (%d files)", op, len(files))
		store.Submit(name, func(ctx context.Context) (domain.Payload, error) {
			return app.api.RunPDF(ctx, op, files, params)
		})
	} else {
		submitFiles(store, args, func(name string, data []byte) application.SubmitFunc {
			return func(ctx context.Context) (domain.Payload, error) {
				return app.api.RunPDF(ctx, op, []api.PDFFile{{Name: name, Data: data}}, params)
			}
		})
	}

	if err := waitAndRender(cmd, store, "PDF Tools"); err != nil {
		return err
	}
	return saveOutputs(cmd, app, store.Snapshot(), r.outDir)
}

func newPDFOpCmd(app *app, op domain.PDFOp, use, short string, multi bool) *cobra.Command {
	run := &pdfRun{}

	minArgs := 1
	if multi && op == domain.PDFMerge {
		minArgs = 2
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(minArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.run(cmd, app, op, args, multi, api.PDFParams{})
		},
	}
	run.registerFlags(cmd)

	return cmd
}

func newPDFPasswordCmd(app *app, op domain.PDFOp, use, short string) *cobra.Command {
	run := &pdfRun{}
	var password string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.run(cmd, app, op, args, false, api.PDFParams{Password: password})
		},
	}
	run.registerFlags(cmd)
	cmd.Flags().StringVar(&password, "password", "", "Document password")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newPDFRotateCmd(app *app) *cobra.Command {
	run := &pdfRun{}
	var angle int

	cmd := &cobra.Command{
		Use:   "rotate <pdf>",
		Short: "Rotate PDF pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.run(cmd, app, domain.PDFRotate, args, false, api.PDFParams{Rotate: angle})
		},
	}
	run.registerFlags(cmd)
	cmd.Flags().IntVar(&angle, "angle", 90, "Clockwise rotation: 90, 180 or 270")

	return cmd
}

func newPDFConvertCmd(app *app) *cobra.Command {
	run := &pdfRun{}
	var task string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert between PDF and office or image formats",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.run(cmd, app, domain.PDFConvert, args, false, api.PDFParams{ConvertTask: task})
		},
	}
	run.registerFlags(cmd)
	cmd.Flags().StringVar(&task, "task", "", "Conversion task, e.g. pdfword, wordpdf, pdfjpg, jpgpdf")
	_ = cmd.MarkFlagRequired("task")

	return cmd
}

func newPDFRedactCmd(app *app) *cobra.Command {
	run := &pdfRun{}
	var terms []string

	cmd := &cobra.Command{
		Use:   "redact <pdf>",
		Short: "Redact sensitive content from a PDF",
		Long:  "Redacts sensitive content from a PDF. Without --term the backend detects sensitive data automatically.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.run(cmd, app, domain.PDFRedact, args, false, api.PDFParams{Redactions: terms})
		},
	}
	run.registerFlags(cmd)
	cmd.Flags().StringArrayVar(&terms, "term", nil, "Term to redact (repeatable)")

	return cmd
}

func readPDFFiles(paths []string) ([]api.PDFFile, error) {
	files := make([]api.PDFFile, 0, len(paths))
	for _, path := range paths {
		data, err := readInput(path)
		if err != nil {
			return nil, err
		}
		files = append(files, api.PDFFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}
