package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

type stubProvider struct {
	reply   string
	err     error
	prompts []string
	block   bool
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

// echoBackend answers chat completions with the user's message padded in whitespace
func echoBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/chat/completions":
			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
				Stream bool `json:"stream"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, `{"error":{"message":"bad json"}}`, http.StatusBadRequest)
				return
			}
			if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Stream {
				http.Error(w, `{"error":{"message":"expected one user message"}}`, http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": time.Now().Unix(),
				"model":   req.Model,
				"choices": []map[string]interface{}{{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]string{
						"role":    "assistant",
						"content": "\n  " + req.Messages[0].Content + "  \n",
					},
				}},
			})
		case "/v1/models":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"object":"list","data":[{"id":"mistral","object":"model"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleter_EchoBackend(t *testing.T) {
	srv := echoBackend(t)
	provider := NewOllamaProvider(srv.URL, "")
	completer := NewCompleter(provider, time.Second, zerolog.Nop())

	text := strings.Repeat("Plants need sunlight water and carbon dioxide to grow. ", 3)
	prompt, err := BuildPrompt(text, models.ModeSummary)
	require.NoError(t, err)

	got := completer.Complete(context.Background(), prompt)

	require.Equal(t, models.CompletionOK, got.Status, got.Err)
	assert.Equal(t, strings.TrimSpace(prompt), got.Text)
	assert.Equal(t, got.Text, got.Display())
	assert.Equal(t, "mistral", provider.Model())
	assert.NoError(t, provider.Ping(context.Background()))
}

func TestCompleter_BackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"model \"mistral\" not found, try pulling it first","type":"api_error"}}`))
	}))
	defer srv.Close()

	got := NewCompleter(NewOllamaProvider(srv.URL, "mistral"), 0, zerolog.Nop()).
		Complete(context.Background(), "prompt")

	assert.Equal(t, models.CompletionError, got.Status)
	assert.True(t, strings.HasPrefix(got.Display(), models.LLMErrorPrefix))
	assert.Contains(t, got.Display(), "not found, try pulling it first")
}

func TestCompleter_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	got := NewCompleter(NewOllamaProvider(url, ""), 0, zerolog.Nop()).
		Complete(context.Background(), "prompt")

	assert.Equal(t, models.CompletionError, got.Status)
	assert.True(t, strings.HasPrefix(got.Display(), models.LLMErrorPrefix))
}

func TestCompleter_StubProvider(t *testing.T) {
	t.Run("reply is trimmed", func(t *testing.T) {
		stub := &stubProvider{reply: "\n\n**Summary**: cells divide.\n"}
		got := NewCompleter(stub, 0, zerolog.Nop()).Complete(context.Background(), "p")
		assert.Equal(t, "**Summary**: cells divide.", got.Display())
		assert.Equal(t, []string{"p"}, stub.prompts)
	})

	t.Run("failure carries cause", func(t *testing.T) {
		stub := &stubProvider{err: errors.New("connection reset by peer")}
		got := NewCompleter(stub, 0, zerolog.Nop()).Complete(context.Background(), "p")
		assert.Equal(t, models.CompletionError, got.Status)
		assert.Equal(t, models.LLMErrorPrefix+"connection reset by peer", got.Display())
		assert.Len(t, stub.prompts, 1, "no retries")
	})

	t.Run("deadline is its own status", func(t *testing.T) {
		stub := &stubProvider{block: true}
		got := NewCompleter(stub, 10*time.Millisecond, zerolog.Nop()).Complete(context.Background(), "p")
		assert.Equal(t, models.CompletionTimeout, got.Status)
		assert.True(t, strings.HasPrefix(got.Display(), models.LLMErrorPrefix+"request timed out"))
	})
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), models.AIConfig{})
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Name())
	assert.Equal(t, DefaultOllamaModel, p.Model())

	p, err = NewProvider(context.Background(), models.AIConfig{
		DefaultProvider: "openai",
		OpenAI:          models.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4o", p.Model())

	_, err = NewProvider(context.Background(), models.AIConfig{DefaultProvider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), models.AIConfig{DefaultProvider: "gemini"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), models.AIConfig{DefaultProvider: "claude"})
	assert.Error(t, err)
}

func TestCompleter_LogsRuneCounts(t *testing.T) {
	var logs strings.Builder
	stub := &stubProvider{reply: "Résumé"}

	got := NewCompleter(stub, 0, zerolog.New(&logs)).Complete(context.Background(), "Zusammenfassung über Zellen")
	require.Equal(t, models.CompletionOK, got.Status)

	var entry struct {
		PromptChars int `json:"prompt_chars"`
		ReplyChars  int `json:"reply_chars"`
	}
	require.NoError(t, json.Unmarshal([]byte(logs.String()), &entry))
	assert.Equal(t, 27, entry.PromptChars)
	assert.Equal(t, 6, entry.ReplyChars)
}
