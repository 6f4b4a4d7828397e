// Package session drives one interaction: upload, extract, pick a mode,
// generate. Nothing is kept between calls.
package session

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classroomhelper/notes-assistant/internal/ai"
	"github.com/classroomhelper/notes-assistant/internal/models"
)

// MinUsableChars is the length the trimmed text must exceed before the model is asked
const MinUsableChars = 20

// State is where an interaction stopped
type State string

const (
	StateIdle         State = "idle"
	StateExtracted    State = "extracted"
	StateModeSelected State = "mode_selected"
	StateCompleted    State = "completed"
)

// TextExtractor is satisfied by *ocr.Extractor
type TextExtractor interface {
	Extract(ctx context.Context, img models.UploadedImage) models.Extraction
}

// TextCompleter is satisfied by *ai.Completer
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) models.Completion
}

// Interaction is the transient result of one pass through the flow
type Interaction struct {
	ID         string             `json:"id"`
	State      State              `json:"state"`
	Mode       models.TaskMode    `json:"mode"`
	Extraction *models.Extraction `json:"-"`
	Text       string             `json:"extractedText"` // What the text area shows
	Prompt     string             `json:"-"`
	Completion *models.Completion `json:"-"`
}

// Generated reports whether a completion was attempted
func (i *Interaction) Generated() bool { return i.Completion != nil }

// Material is the text shown and offered for download, empty when nothing was generated
func (i *Interaction) Material() string {
	if i.Completion == nil {
		return ""
	}
	return i.Completion.Display()
}

// Flow wires the extractor and completer together
type Flow struct {
	extractor TextExtractor
	completer TextCompleter
	logger    zerolog.Logger
}

// NewFlow creates a flow controller
func NewFlow(extractor TextExtractor, completer TextCompleter, logger zerolog.Logger) *Flow {
	return &Flow{
		extractor: extractor,
		completer: completer,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// Upload extracts text from img and, when the text is usable, immediately
// generates material for mode.
func (f *Flow) Upload(ctx context.Context, img models.UploadedImage, mode models.TaskMode) *Interaction {
	it := &Interaction{ID: uuid.NewString(), State: StateIdle, Mode: mode}
	logger := f.logger.With().Str("interaction", it.ID).Logger()

	extraction := f.extractor.Extract(ctx, img)
	it.Extraction = &extraction
	it.Text = extraction.Display()
	it.State = StateExtracted

	logger.Debug().Str("format", string(img.Format)).Str("status", string(extraction.Status)).Msg("image processed")

	if extraction.Status != models.ExtractionOK {
		it.State = StateModeSelected
		logger.Info().Msg("no usable text, skipping generation")
		return it
	}

	f.generate(ctx, it, logger)
	return it
}

// Generate re-runs prompt building and completion for text that was already
// extracted, e.g. after the user picks another mode.
func (f *Flow) Generate(ctx context.Context, text string, mode models.TaskMode) *Interaction {
	it := &Interaction{ID: uuid.NewString(), State: StateExtracted, Mode: mode, Text: text}
	logger := f.logger.With().Str("interaction", it.ID).Logger()

	f.generate(ctx, it, logger)
	return it
}

func (f *Flow) generate(ctx context.Context, it *Interaction, logger zerolog.Logger) {
	it.State = StateModeSelected

	if !Usable(it.Text) {
		logger.Info().Int("chars", utf8.RuneCountInString(strings.TrimSpace(it.Text))).Msg("text too short, skipping generation")
		return
	}

	prompt, err := ai.BuildPrompt(it.Text, it.Mode)
	if err != nil {
		logger.Error().Err(err).Msg("prompt not built")
		it.Completion = &models.Completion{Status: models.CompletionError, Err: err}
		it.State = StateCompleted
		return
	}
	it.Prompt = prompt

	completion := f.completer.Complete(ctx, prompt)
	it.Completion = &completion
	it.State = StateCompleted

	logger.Info().
		Str("mode", it.Mode.Key()).
		Str("status", string(completion.Status)).
		Msg("material generated")
}

// Usable reports whether text passes the length gate. The placeholder and OCR
// error strings never do, even when posted back by the page.
func Usable(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == models.NoTextPlaceholder || strings.HasPrefix(trimmed, strings.TrimSpace(models.OCRErrorPrefix)) {
		return false
	}
	return utf8.RuneCountInString(trimmed) > MinUsableChars
}
