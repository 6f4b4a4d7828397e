package models

import "time"

// Config represents the service configuration
type Config struct {
	// Server config
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	MaxUploadMB int    `yaml:"max_upload_mb"` // Upload size cap (default: 10)

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// Logging
	Log LogConfig `yaml:"log"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Engine        string        `yaml:"engine"`         // "tesseract" or "gosseract"
	Language      string        `yaml:"language"`       // OCR language (default: "eng")
	TesseractPath string        `yaml:"tesseract_path"` // Tesseract executable (default: "tesseract")
	Timeout       time.Duration `yaml:"timeout"`        // 0 disables the deadline
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI (or any OpenAI-compatible endpoint)
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Ollama (local)
	Ollama OllamaConfig `yaml:"ollama"`

	// Default provider
	DefaultProvider string `yaml:"default_provider"` // "ollama", "openai", "gemini"

	Timeout time.Duration `yaml:"timeout"` // 0 disables the deadline
}

// OpenAIConfig for OpenAI/Azure OpenAI
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url,omitempty"` // For custom endpoints
	Model   string `yaml:"model"`              // Default: "gpt-4o-mini"
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// OllamaConfig for local Ollama
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // Default: "http://localhost:11434"
	Model   string `yaml:"model"`    // Default: "mistral"
}

// LogConfig controls the zerolog output
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // "json" or "console"
}

// MaxUploadBytes returns the upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) * 1024 * 1024
}
