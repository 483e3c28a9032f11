// File: internal/llm/client.go
// Description: The optional text-generation enhancement. Stages treat any
// failure here exactly like absence and fall back to their deterministic
// logic; nothing in this package is ever pipeline-fatal.

package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/debdutta1777/AuraProcure/internal/config"
)

// Generator produces structured output from a prompt. Implementations must be
// safe for concurrent use.
type Generator interface {
	// GenerateJSON asks the model for a JSON document matching the system
	// instruction and unmarshals it into out.
	GenerateJSON(ctx context.Context, systemInstruction, prompt string, out any) error
	// Enabled reports whether calls can be attempted at all.
	Enabled() bool
}

// New builds a Generator from configuration. Without an API key it returns
// the disabled implementation.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) Generator {
	if !cfg.Enabled() {
		logger.Info("No generation API key configured; running fully deterministic")
		return Disabled{}
	}

	client, err := NewGeminiGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Failed to initialize generation client; running fully deterministic", zap.Error(err))
		return Disabled{}
	}
	return client
}

// Disabled is the Generator used when no enhancement is configured.
type Disabled struct{}

// ErrDisabled is returned by Disabled for every generation attempt.
var ErrDisabled = errDisabled{}

type errDisabled struct{}

func (errDisabled) Error() string { return "text generation is disabled" }

func (Disabled) GenerateJSON(context.Context, string, string, any) error { return ErrDisabled }
func (Disabled) Enabled() bool                                           { return false }
