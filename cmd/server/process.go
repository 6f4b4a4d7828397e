package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/classroomhelper/notes-assistant/internal/models"
	"github.com/classroomhelper/notes-assistant/internal/session"
)

func newProcessCmd(configPath *string) *cobra.Command {
	var (
		imagePath string
		modeFlag  string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one image through OCR and the language model",
		Example: `  notes-assistant process --image notes.jpg
  notes-assistant process --image notes.png --mode full --out lesson.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := models.ParseTaskMode(modeFlag)
			if err != nil {
				return err
			}
			img, err := readImage(imagePath)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			it := a.flow.Upload(cmd.Context(), img, mode)
			return writeInteraction(cmd, it, outPath)
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "photo of the notes (jpg, jpeg or png)")
	cmd.Flags().StringVar(&modeFlag, "mode", string(models.DefaultTaskMode), "summary, quiz or full (or the full label)")
	cmd.Flags().StringVar(&outPath, "out", models.DownloadFilename, "where to write the generated material")
	cmd.MarkFlagRequired("image")
	return cmd
}

func readImage(path string) (models.UploadedImage, error) {
	format, err := models.ImageFormatFromFilename(path)
	if err != nil {
		return models.UploadedImage{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return models.UploadedImage{}, fmt.Errorf("failed to read image: %w", err)
	}
	return models.UploadedImage{Data: data, Format: format, Filename: path}, nil
}

func writeInteraction(cmd *cobra.Command, it *session.Interaction, outPath string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "📝 Extracted Text")
	fmt.Fprintln(out, it.Text)
	fmt.Fprintln(out)

	if !it.Generated() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Not enough text to generate teaching material.")
		return nil
	}

	fmt.Fprintf(out, "🎓 AI-Generated Teaching Material (%s)\n", it.Mode)
	fmt.Fprintln(out, it.Material())

	if outPath == "" {
		return nil
	}
	if err := os.WriteFile(outPath, []byte(it.Material()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved to %s\n", outPath)
	return nil
}
