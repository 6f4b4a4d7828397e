package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TaskMode selects which teaching material the assistant produces
type TaskMode string

const (
	ModeSummary     TaskMode = "Summary Only"
	ModeSummaryQuiz TaskMode = "Summary + Quiz"
	ModeFull        TaskMode = "Full (Summary + Quiz + Activities)"
)

// TaskModes lists the modes in the order the selector shows them.
// The first entry is the default.
var TaskModes = []TaskMode{ModeSummary, ModeSummaryQuiz, ModeFull}

// DefaultTaskMode is preselected before the user picks anything
const DefaultTaskMode = ModeSummary

// ParseTaskMode accepts a selector label or a short key ("summary", "quiz", "full").
// An empty value yields the default mode.
func ParseTaskMode(s string) (TaskMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTaskMode, nil
	}
	for _, m := range TaskModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	switch strings.ToLower(s) {
	case "summary", "summary-only":
		return ModeSummary, nil
	case "quiz", "summary-quiz":
		return ModeSummaryQuiz, nil
	case "full":
		return ModeFull, nil
	}
	return "", fmt.Errorf("unknown task mode: %q", s)
}

// Key returns the short form used by the CLI and JSON API
func (m TaskMode) Key() string {
	switch m {
	case ModeSummary:
		return "summary"
	case ModeSummaryQuiz:
		return "quiz"
	case ModeFull:
		return "full"
	default:
		return ""
	}
}

// ImageFormat is one of the accepted raster upload formats
type ImageFormat string

const (
	ImageFormatJPG  ImageFormat = "jpg"
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatPNG  ImageFormat = "png"
)

// AcceptedExtensions is used by the upload control
var AcceptedExtensions = []string{".jpg", ".jpeg", ".png"}

// ImageFormatFromFilename detects the declared format from the file extension
func ImageFormatFromFilename(name string) (ImageFormat, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	switch ImageFormat(ext) {
	case ImageFormatJPG, ImageFormatJPEG, ImageFormatPNG:
		return ImageFormat(ext), nil
	}
	return "", fmt.Errorf("unsupported image type %q (accepted: jpg, jpeg, png)", ext)
}

// ImageFormatFromContentType maps a MIME type to a format
func ImageFormatFromContentType(contentType string) (ImageFormat, error) {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return ImageFormatJPEG, nil
	case "image/png":
		return ImageFormatPNG, nil
	}
	return "", fmt.Errorf("unsupported content type %q", contentType)
}

// UploadedImage is the raw photo of the notes as received from the user
type UploadedImage struct {
	Data     []byte      `json:"-"`
	Format   ImageFormat `json:"format"`
	Filename string      `json:"filename,omitempty"`
}

// DownloadFilename is the name offered for the generated material
const DownloadFilename = "teaching_material.txt"

// User-visible strings. They match what the page has always shown.
const (
	NoTextPlaceholder = "⚠️ No text detected. Try a clearer image."
	OCRErrorPrefix    = "❌ Local OCR Error: "
	LLMErrorPrefix    = "❌ LLM Error: "
)

// ExtractionStatus tags the outcome of a text extraction
type ExtractionStatus string

const (
	ExtractionOK    ExtractionStatus = "ok"
	ExtractionEmpty ExtractionStatus = "empty"
	ExtractionError ExtractionStatus = "error"
)

// Extraction is the result of running OCR on an uploaded image
type Extraction struct {
	Status   ExtractionStatus `json:"status"`
	Text     string           `json:"text,omitempty"` // Trimmed text (OK only)
	Err      error            `json:"-"`
	Duration time.Duration    `json:"-"`
}

// Display returns the string shown in the extracted text area
func (e Extraction) Display() string {
	switch e.Status {
	case ExtractionOK:
		return e.Text
	case ExtractionEmpty:
		return NoTextPlaceholder
	default:
		return OCRErrorPrefix + errString(e.Err)
	}
}

// CompletionStatus tags the outcome of an LLM call
type CompletionStatus string

const (
	CompletionOK      CompletionStatus = "ok"
	CompletionError   CompletionStatus = "error"
	CompletionTimeout CompletionStatus = "timeout"
)

// Completion is the result of asking the language model
type Completion struct {
	Status   CompletionStatus `json:"status"`
	Text     string           `json:"text,omitempty"`
	Err      error            `json:"-"`
	Duration time.Duration    `json:"-"`
}

// Display returns the string shown as generated material
func (c Completion) Display() string {
	if c.Status == CompletionOK {
		return c.Text
	}
	return LLMErrorPrefix + errString(c.Err)
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
