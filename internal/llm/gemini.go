// File: internal/llm/gemini.go
package llm

import (
	"context"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/debdutta1777/AuraProcure/internal/config"
)

// GeminiGenerator implements Generator against the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	cfg     config.LLMConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator initializes the client.
func NewGeminiGenerator(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	return &GeminiGenerator{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		logger:  logger.Named("llm.gemini"),
	}, nil
}

// GenerateJSON requests a JSON response and unmarshals it into out.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, systemInstruction, prompt string, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	if g.cfg.APITimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.APITimeout)
		defer cancel()
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.cfg.Temperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return fmt.Errorf("generation returned an empty response")
	}

	if err := json.Unmarshal([]byte(sanitizeJSON(text)), out); err != nil {
		g.logger.Debug("Malformed generation response", zap.String("response", text))
		return fmt.Errorf("failed to decode generation response: %w", err)
	}
	return nil
}

// Enabled always reports true for an initialized client.
func (g *GeminiGenerator) Enabled() bool { return true }

// sanitizeJSON strips markdown code fences some models wrap around JSON.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
