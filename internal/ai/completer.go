package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/classroomhelper/notes-assistant/internal/models"
)

// Completer wraps a Provider and folds every failure into a tagged Completion
type Completer struct {
	provider Provider
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewCompleter creates a completion adapter. A zero timeout means no deadline.
func NewCompleter(provider Provider, timeout time.Duration, logger zerolog.Logger) *Completer {
	return &Completer{
		provider: provider,
		timeout:  timeout,
		logger: logger.With().
			Str("component", "llm").
			Str("provider", provider.Name()).
			Str("model", provider.Model()).
			Logger(),
	}
}

// Provider exposes the injected provider for health checks
func (c *Completer) Provider() Provider { return c.provider }

// Complete issues exactly one request; no retries
func (c *Completer) Complete(ctx context.Context, prompt string) models.Completion {
	start := time.Now()
	result := c.complete(ctx, prompt)
	result.Duration = time.Since(start)

	evt := c.logger.Info()
	if result.Status != models.CompletionOK {
		evt = c.logger.Warn().Err(result.Err)
	}
	evt.Str("status", string(result.Status)).
		Int("prompt_chars", utf8.RuneCountInString(prompt)).
		Int("reply_chars", utf8.RuneCountInString(result.Text)).
		Dur("duration", result.Duration).
		Msg("completion finished")

	return result
}

func (c *Completer) complete(ctx context.Context, prompt string) models.Completion {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.Completion{
				Status: models.CompletionTimeout,
				Err:    fmt.Errorf("request timed out after %s: %w", c.timeout, err),
			}
		}
		return models.Completion{Status: models.CompletionError, Err: err}
	}

	return models.Completion{Status: models.CompletionOK, Text: strings.TrimSpace(reply)}
}
