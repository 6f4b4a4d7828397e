//go:build gosseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// GosseractOCR runs libtesseract in-process through the gosseract binding.
// Build with -tags gosseract and the tesseract/leptonica headers installed.
type GosseractOCR struct {
	language      string
	clientFactory func() *gosseract.Client
}

// NewGosseractOCR constructs the in-process engine
func NewGosseractOCR(language string) (Engine, error) {
	if language == "" {
		language = "eng"
	}
	return &GosseractOCR{language: language, clientFactory: gosseract.NewClient}, nil
}

func (g *GosseractOCR) Name() string { return "gosseract" }

// Recognize performs OCR on a single image. A fresh client is used per call;
// gosseract clients are not safe for concurrent use.
func (g *GosseractOCR) Recognize(ctx context.Context, imageBytes []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := g.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(g.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	if err := c.SetImageFromBytes(imageBytes); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return text, nil
}

func (g *GosseractOCR) Version(ctx context.Context) (string, error) {
	return "libtesseract " + gosseract.Version(), nil
}
