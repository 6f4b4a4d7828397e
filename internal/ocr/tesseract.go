package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Engine recognizes text in an encoded image
type Engine interface {
	Name() string
	Recognize(ctx context.Context, imageBytes []byte) (string, error)
	Version(ctx context.Context) (string, error)
}

// TesseractOCR runs the tesseract executable found at a configurable path.
// The image is piped on stdin and the text read from stdout, so no temp
// files are written.
type TesseractOCR struct {
	path     string
	language string
}

// NewTesseractOCR creates a new Tesseract OCR instance
func NewTesseractOCR(path, language string) *TesseractOCR {
	if path == "" {
		path = "tesseract"
	}
	if language == "" {
		language = "eng" // Default to English
	}
	return &TesseractOCR{
		path:     path,
		language: language,
	}
}

func (t *TesseractOCR) Name() string { return "tesseract" }

// Path returns the executable this engine invokes
func (t *TesseractOCR) Path() string { return t.path }

// Recognize performs OCR on raw image bytes and returns the untrimmed text
func (t *TesseractOCR) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if len(imageBytes) == 0 {
		return "", errors.New("empty image")
	}

	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(imageBytes)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("tesseract failed: %w: %s", err, msg)
		}
		return "", fmt.Errorf("tesseract failed: %w", err)
	}

	return stdout.String(), nil
}

// Version returns the first line of `tesseract --version`
func (t *TesseractOCR) Version(ctx context.Context) (string, error) {
	output, err := exec.CommandContext(ctx, t.path, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s not found or not executable: %w", t.path, err)
	}

	version := "unknown"
	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		version = strings.TrimSpace(lines[0])
	}
	return version, nil
}
