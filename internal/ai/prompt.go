package ai

import (
	"fmt"
	"strings"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

// MaxPromptWords bounds how much of the notes is sent to the model
const MaxPromptWords = 200

const summaryTemplate = `Summarize the following classroom notes in under 150 words. Be concise and highlight key points.

Content:
%s`

const summaryQuizTemplate = `Given the following classroom lesson content:

1. Generate a short summary (max 150 words).
2. Create 3 quiz questions with answers.

Content:
%s`

const fullTemplate = `You're a teaching assistant AI. Based on the following classroom content:

1. Generate a short summary (max 150 words).
2. Create 3 quiz questions with answers.
3. Suggest 2 engaging classroom activity ideas.

Content:
%s`

var templates = map[models.TaskMode]string{
	models.ModeSummary:     summaryTemplate,
	models.ModeSummaryQuiz: summaryQuizTemplate,
	models.ModeFull:        fullTemplate,
}

// BuildPrompt renders the template for mode around the first MaxPromptWords
// words of text. Anything past the window is dropped.
func BuildPrompt(text string, mode models.TaskMode) (string, error) {
	tmpl, ok := templates[mode]
	if !ok {
		return "", fmt.Errorf("unknown task mode: %q", mode)
	}
	return fmt.Sprintf(tmpl, TruncateWords(text, MaxPromptWords)), nil
}

// TruncateWords keeps the first n whitespace-delimited words, joined by single spaces
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
