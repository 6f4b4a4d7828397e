// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/classroomhelper/notes-assistant/internal/ai"
	"github.com/classroomhelper/notes-assistant/internal/models"
)

// ConfigError reports an invalid setting
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Default returns the configuration used when no file is present
func Default() *models.Config {
	return &models.Config{
		Port:        8080,
		Host:        "0.0.0.0",
		MaxUploadMB: 10,
		OCR: models.OCRConfig{
			Engine:        "tesseract",
			Language:      "eng",
			TesseractPath: "tesseract",
			Timeout:       60 * time.Second,
		},
		AI: models.AIConfig{
			DefaultProvider: "ollama",
			Timeout:         180 * time.Second,
			Ollama: models.OllamaConfig{
				BaseURL: ai.DefaultOllamaURL,
				Model:   ai.DefaultOllamaModel,
			},
			OpenAI: models.OpenAIConfig{Model: ai.DefaultOpenAIModel},
			Gemini: models.GeminiConfig{Model: ai.DefaultGeminiModel},
		},
		Log: models.LogConfig{Level: "info", Format: "json"},
	}
}

// LoadDotEnv loads variables from .env files if they exist. Existing
// environment variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*models.Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults + env only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides settings with environment variables if present
func applyEnv(config *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return &ConfigError{Field: "PORT", Err: err}
		}
		config.Port = p
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}

	if engine := os.Getenv("OCR_ENGINE"); engine != "" {
		config.OCR.Engine = engine
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	if path := os.Getenv("TESSERACT_PATH"); path != "" {
		config.OCR.TesseractPath = path
	}
	if err := durationEnv("OCR_TIMEOUT", &config.OCR.Timeout); err != nil {
		return err
	}

	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if err := durationEnv("AI_TIMEOUT", &config.AI.Timeout); err != nil {
		return err
	}
	if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
		config.AI.Ollama.BaseURL = baseURL
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		config.AI.Ollama.Model = model
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Log.Format = format
	}
	return nil
}

func durationEnv(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return &ConfigError{Field: name, Err: err}
	}
	*dst = d
	return nil
}

// Validate rejects settings the service cannot start with
func Validate(config *models.Config) error {
	if config.Port <= 0 || config.Port > 65535 {
		return &ConfigError{Field: "port", Err: fmt.Errorf("%d out of range", config.Port)}
	}
	if config.MaxUploadMB < 0 {
		return &ConfigError{Field: "max_upload_mb", Err: errors.New("must not be negative")}
	}
	switch config.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return &ConfigError{Field: "ocr.engine", Err: fmt.Errorf("unsupported engine %q", config.OCR.Engine)}
	}
	switch config.AI.DefaultProvider {
	case "ollama", "openai", "gemini":
	default:
		return &ConfigError{Field: "ai.default_provider", Err: fmt.Errorf("unsupported provider %q", config.AI.DefaultProvider)}
	}
	if config.OCR.Timeout < 0 || config.AI.Timeout < 0 {
		return &ConfigError{Field: "timeout", Err: errors.New("must not be negative")}
	}
	return nil
}
