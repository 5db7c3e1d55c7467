package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/intelliscan-cli/internal/adapters/render/carousel"
	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

const resultBodyLines = 20

// waitAndRender blocks behind a spinner until every submission resolved, then
// shows the carousel. On a terminal the carousel stays open for navigation
// and deletion; piped output gets a single printed view. Per-entry failures
// stay in their entries; the command itself does not fail.
func waitAndRender(cmd *cobra.Command, store *application.ResultStore, title string) error {
	snapshot := store.Snapshot()
	label := fmt.Sprintf("Processing %d file(s)...", len(snapshot.Entries))

	err := runSubmitSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(context.Context) error {
		store.Wait()
		return nil
	})
	if err != nil {
		return err
	}

	if interactiveTerminal(cmd) {
		return carousel.Browse(cmd.Context(), store, carousel.BrowseOptions{
			Title:        title,
			MaxBodyLines: resultBodyLines,
		})
	}

	view, err := carousel.Render(store.Snapshot(), carousel.RenderOptions{
		Title:        title,
		MaxBodyLines: resultBodyLines,
	})
	if err != nil {
		return fmt.Errorf("render results: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), view)
	return nil
}

// interactiveTerminal reports whether the command can run a keyboard-driven
// view: stdin and the command's output must both be terminals.
func interactiveTerminal(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(out.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

// saveOutputs writes file and SVG payloads from successful entries to outDir.
// When outDir is empty it falls back to the working directory if the
// auto-save preference is on, and otherwise saves nothing.
func saveOutputs(cmd *cobra.Command, app *app, snapshot application.ResultSnapshot, outDir string) error {
	if outDir == "" {
		autosave, err := app.prefs.Get("autosave")
		if err != nil || autosave != "true" {
			return nil
		}
		outDir = "."
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, entry := range snapshot.Entries {
		if entry.Status != domain.StatusSuccess {
			continue
		}

		var path string
		var data []byte
		switch payload := entry.Payload.(type) {
		case domain.FilePayload:
			name := payload.Filename
			if name == "" {
				name = entry.Name
			}
			path = filepath.Join(outDir, filepath.Base(name))
			data = payload.Data
		case domain.SVGPayload:
			name := strings.TrimSuffix(filepath.Base(entry.Name), filepath.Ext(entry.Name)) + ".svg"
			path = filepath.Join(outDir, name)
			data = []byte(payload.Markup)
		default:
			continue
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	}

	return nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// submitFiles reads each input path and hands it to submit. Unreadable files
// become error entries rather than aborting the batch.
func submitFiles(store *application.ResultStore, paths []string, submit func(name string, data []byte) application.SubmitFunc) {
	for _, path := range paths {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			readErr := err
			logger.Debug("read input file failed", "path", path, "error", readErr)
			store.Submit(name, func(context.Context) (domain.Payload, error) {
				return nil, fmt.Errorf("read file: %w", readErr)
			})
			continue
		}

		store.Submit(name, submit(name, data))
	}
}
