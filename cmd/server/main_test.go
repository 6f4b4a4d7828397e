package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroomhelper/notes-assistant/internal/models"
	"github.com/classroomhelper/notes-assistant/internal/session"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "process")

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "config.yaml", flag.DefValue)
}

func TestProcessRequiresImage(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"process"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image")
}

func TestReadImage(t *testing.T) {
	dir := t.TempDir()

	t.Run("accepted extension", func(t *testing.T) {
		path := filepath.Join(dir, "notes.PNG")
		require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

		img, err := readImage(path)
		require.NoError(t, err)
		assert.Equal(t, models.ImageFormatPNG, img.Format)
		assert.Equal(t, []byte("png-bytes"), img.Data)
	})

	t.Run("rejected extension", func(t *testing.T) {
		_, err := readImage(filepath.Join(dir, "notes.gif"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := readImage(filepath.Join(dir, "absent.jpg"))
		assert.Error(t, err)
	})
}

func newTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	cmd := &cobra.Command{}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd, stdout, stderr
}

func TestWriteInteraction(t *testing.T) {
	t.Run("generated material is saved", func(t *testing.T) {
		cmd, stdout, _ := newTestCommand()
		out := filepath.Join(t.TempDir(), models.DownloadFilename)
		it := &session.Interaction{
			Mode:       models.ModeSummaryQuiz,
			Text:       "Photosynthesis converts light into chemical energy.",
			Completion: &models.Completion{Status: models.CompletionOK, Text: "## Summary\nPlants make food."},
		}

		require.NoError(t, writeInteraction(cmd, it, out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "## Summary\nPlants make food.", string(data))
		assert.Contains(t, stdout.String(), "Photosynthesis")
		assert.Contains(t, stdout.String(), "Summary + Quiz")
	})

	t.Run("failed completion is saved as shown", func(t *testing.T) {
		cmd, _, _ := newTestCommand()
		out := filepath.Join(t.TempDir(), "result.txt")
		it := &session.Interaction{
			Mode:       models.ModeSummary,
			Text:       "Enough text to pass the gate for generation.",
			Completion: &models.Completion{Status: models.CompletionError, Err: errors.New("connection refused")},
		}

		require.NoError(t, writeInteraction(cmd, it, out))

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, models.LLMErrorPrefix+"connection refused", string(data))
	})

	t.Run("nothing generated writes no file", func(t *testing.T) {
		cmd, stdout, stderr := newTestCommand()
		out := filepath.Join(t.TempDir(), models.DownloadFilename)
		it := &session.Interaction{Mode: models.ModeSummary, Text: models.NoTextPlaceholder}

		require.NoError(t, writeInteraction(cmd, it, out))

		_, err := os.Stat(out)
		assert.True(t, os.IsNotExist(err))
		assert.Contains(t, stdout.String(), models.NoTextPlaceholder)
		assert.Contains(t, stderr.String(), "Not enough text")
	})
}
