package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i+1)
	}
	return words
}

func contentOf(t *testing.T, prompt string) string {
	t.Helper()
	idx := strings.Index(prompt, "Content:\n")
	require.NotEqual(t, -1, idx, "prompt has no Content section")
	return prompt[idx+len("Content:\n"):]
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	text := "The water cycle: evaporation, condensation, precipitation and collection."
	for _, mode := range models.TaskModes {
		first, err := BuildPrompt(text, mode)
		require.NoError(t, err)
		second, err := BuildPrompt(text, mode)
		require.NoError(t, err)
		assert.Equal(t, first, second, mode)
	}
}

func TestBuildPrompt_TruncatesTo200Words(t *testing.T) {
	words := numberedWords(350)
	text := strings.Join(words[:100], "\n\t") + "   " + strings.Join(words[100:], "  ")

	prompt, err := BuildPrompt(text, models.ModeSummary)
	require.NoError(t, err)

	content := contentOf(t, prompt)
	assert.Equal(t, strings.Join(words[:MaxPromptWords], " "), content)
	assert.NotContains(t, content, "w201")
}

func TestBuildPrompt_Templates(t *testing.T) {
	tests := []struct {
		mode     models.TaskMode
		contains []string
		excludes []string
	}{
		{
			mode:     models.ModeSummary,
			contains: []string{"Summarize the following classroom notes in under 150 words. Be concise and highlight key points."},
			excludes: []string{"quiz", "activity"},
		},
		{
			mode:     models.ModeSummaryQuiz,
			contains: []string{"Given the following classroom lesson content:", "1. Generate a short summary (max 150 words).", "2. Create 3 quiz questions with answers."},
			excludes: []string{"activity"},
		},
		{
			mode: models.ModeFull,
			contains: []string{
				"You're a teaching assistant AI.",
				"2. Create 3 quiz questions with answers.",
				"3. Suggest 2 engaging classroom activity ideas.",
			},
		},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			prompt, err := BuildPrompt("notes", tt.mode)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, prompt, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, prompt, s)
			}
			assert.True(t, strings.HasSuffix(prompt, "\n\nContent:\nnotes"))
			assert.False(t, seen[prompt], "templates must differ")
			seen[prompt] = true
		})
	}
}

func TestBuildPrompt_SummaryExample(t *testing.T) {
	text := strings.Join(strings.Fields(`Mitochondria produce most of the chemical energy needed
		to power the biochemical reactions of the cell and store it in a molecule called
		adenosine triphosphate`), " ")
	require.Len(t, strings.Fields(text), 25)

	prompt, err := BuildPrompt(text, models.ModeSummary)
	require.NoError(t, err)

	instruction := "Summarize the following classroom notes in under 150 words"
	assert.True(t, strings.HasPrefix(prompt, instruction))
	assert.Greater(t, strings.Index(prompt, text), strings.Index(prompt, instruction))
}

func TestBuildPrompt_UnknownMode(t *testing.T) {
	_, err := BuildPrompt("notes", models.TaskMode("Poem"))
	assert.Error(t, err)
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "", TruncateWords("   \n ", 5))
	assert.Equal(t, "a b c", TruncateWords(" a\nb\t\tc ", 5))
	assert.Equal(t, "a b", TruncateWords("a b c d", 2))
}
