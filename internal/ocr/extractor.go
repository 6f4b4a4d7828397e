package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

// NewEngine builds the OCR engine selected in the configuration
func NewEngine(cfg models.OCRConfig) (Engine, error) {
	switch cfg.Engine {
	case "", "tesseract":
		return NewTesseractOCR(cfg.TesseractPath, cfg.Language), nil
	case "gosseract":
		return NewGosseractOCR(cfg.Language)
	default:
		return nil, fmt.Errorf("unsupported OCR engine: %s", cfg.Engine)
	}
}

// Extractor turns an uploaded photo into text. Failures never escape as Go
// errors; they come back tagged in the Extraction.
type Extractor struct {
	engine  Engine
	timeout time.Duration
	logger  zerolog.Logger
}

// NewExtractor creates a new text extractor. A zero timeout means no deadline.
func NewExtractor(engine Engine, timeout time.Duration, logger zerolog.Logger) *Extractor {
	return &Extractor{
		engine:  engine,
		timeout: timeout,
		logger:  logger.With().Str("component", "ocr").Str("engine", engine.Name()).Logger(),
	}
}

// Engine exposes the underlying engine for health checks
func (e *Extractor) Engine() Engine { return e.engine }

// Extract runs OCR on the image and classifies the outcome
func (e *Extractor) Extract(ctx context.Context, img models.UploadedImage) models.Extraction {
	start := time.Now()
	result := e.extract(ctx, img)
	result.Duration = time.Since(start)

	evt := e.logger.Info()
	if result.Status == models.ExtractionError {
		evt = e.logger.Warn().Err(result.Err)
	}
	evt.Str("status", string(result.Status)).
		Int("bytes", len(img.Data)).
		Int("chars", utf8.RuneCountInString(result.Text)).
		Dur("duration", result.Duration).
		Msg("text extraction finished")

	return result
}

func (e *Extractor) extract(ctx context.Context, img models.UploadedImage) models.Extraction {
	if err := ValidateImage(img); err != nil {
		return models.Extraction{Status: models.ExtractionError, Err: err}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.engine.Recognize(ctx, img.Data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("OCR timed out after %s", e.timeout)
		}
		return models.Extraction{Status: models.ExtractionError, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Extraction{Status: models.ExtractionEmpty}
	}
	return models.Extraction{Status: models.ExtractionOK, Text: text}
}

// ValidateImage checks that the bytes decode as one of the accepted raster formats
func ValidateImage(img models.UploadedImage) error {
	if len(img.Data) == 0 {
		return errors.New("empty image")
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("cannot identify image file: %w", err)
	}
	switch format {
	case "jpeg", "png":
		return nil
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}
