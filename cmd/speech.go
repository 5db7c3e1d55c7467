package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bnema/intelliscan-cli/internal/application"
	"github.com/bnema/intelliscan-cli/internal/domain"
	"github.com/bnema/intelliscan-cli/internal/ports"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSpeechCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speech",
		Short: "Transcribe, synthesize and translate speech",
	}

	cmd.AddCommand(
		newSpeechTranscribeCmd(app),
		newSpeechTTSCmd(app),
		newSpeechTranslateCmd(app),
		newSpeechVoicesCmd(app),
	)

	return cmd
}

func newSpeechTranscribeCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio>...",
		Short: "Transcribe audio recordings to text",
		Long:  "Transcribes audio files to text. Pass '-' to read a recording from stdin, e.g. piped from an audio capture tool.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			store := application.NewResultStore(ports.SystemClock{})
			defer store.Close()

			var paths []string
			for _, arg := range args {
				if arg != "-" {
					paths = append(paths, arg)
					continue
				}

				// Live recordings arrive on stdin without a filename; give
				// them a synthesized one.
				name := fmt.Sprintf("recording-%s.wav", uuid.NewString())
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read recording from stdin: %w", err)
				}
				store.Submit(name, func(ctx context.Context) (domain.Payload, error) {
					return app.api.Transcribe(ctx, name, data)
				})
			}

			submitFiles(store, paths, func(name string, data []byte) application.SubmitFunc {
				return func(ctx context.Context) (domain.Payload, error) {
					return app.api.Transcribe(ctx, name, data)
				}
			})

			return waitAndRender(cmd, store, "Speech & Language")
		},
	}
}

func newSpeechTTSCmd(app *app) *cobra.Command {
	var text, voice, outFile string

	cmd := &cobra.Command{
		Use:   "tts",
		Short: "Synthesize speech from text",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			payload, err := app.api.Synthesize(cmd.Context(), text, voice)
			if err != nil {
				return err
			}

			if outFile == "" {
				outFile = payload.Filename
			}
			if outFile == "" {
				outFile = "speech.mp3"
			}

			if err := os.WriteFile(outFile, payload.Data, 0o644); err != nil {
				return fmt.Errorf("save audio: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", outFile, len(payload.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to synthesize")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice id (see 'speech voices')")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output audio file")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newSpeechTranslateCmd(app *app) *cobra.Command {
	var text, targetLang string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate text to another language",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			payload, err := app.api.Translate(cmd.Context(), text, targetLang)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), payload.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to translate")
	cmd.Flags().StringVar(&targetLang, "to", "hi", "Target language code")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newSpeechVoicesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List available synthesis voices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ensureSignedIn(cmd.Context(), app); err != nil {
				return err
			}

			voices, err := app.api.Voices(cmd.Context())
			if err != nil {
				return err
			}

			if len(voices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No voices available.")
				return nil
			}

			for _, voice := range voices {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", voice.ID, voice.Name, voice.Lang)
			}
			return nil
		},
	}
}
