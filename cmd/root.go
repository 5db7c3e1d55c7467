package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "intelliscan",
		Short:         "IntelliScan: OCR, math solving, sketch vectorization, PDF tools and speech from the terminal",
		Long:          "intelliscan uploads documents, images, sketches and audio to the IntelliScan backend for OCR, math-equation solving, sketch vectorization, PDF manipulation and speech transcription, translation and synthesis, and browses past results.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newSignupCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newAvatarCmd(app),
		newOCRCmd(app),
		newMathCmd(app),
		newSketchCmd(app),
		newPDFCmd(app),
		newSpeechCmd(app),
		newHistoryCmd(app),
		newSettingsCmd(app),
	)

	return rootCmd
}
