package recommend

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/config"
	"github.com/coverscan/coverscan/pkg/anthropic"
	"github.com/coverscan/coverscan/pkg/gemini"
)

// TextGenerator is one candidate in the ranker chain. Generators are tried in
// order; any error moves the engine to the next one.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiRanker runs a prompt against a list of Gemini models in order,
// moving to the next model on quota exhaustion or unknown-model errors.
type GeminiRanker struct {
	client gemini.Client
	models []string
}

// NewGeminiRanker wraps a Gemini client with the model fallback list.
func NewGeminiRanker(client gemini.Client, models []string) *GeminiRanker {
	return &GeminiRanker{client: client, models: models}
}

func (g *GeminiRanker) Name() string { return "gemini" }

func (g *GeminiRanker) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for _, m := range g.models {
		out, err := g.client.Generate(ctx, m, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !gemini.IsRetryableWithNextModel(err) {
			return "", err
		}
		zap.L().Warn("gemini model exhausted, trying next",
			zap.String("model", m),
			zap.Error(err),
		)
	}
	if lastErr == nil {
		return "", eris.New("recommend: no gemini models configured")
	}
	return "", eris.Wrap(lastErr, "recommend: all gemini models failed")
}

// ClaudeRanker runs a prompt against a single Anthropic model.
type ClaudeRanker struct {
	client anthropic.Client
	model  string
}

// NewClaudeRanker wraps an Anthropic client for use in the ranker chain.
func NewClaudeRanker(client anthropic.Client, model string) *ClaudeRanker {
	return &ClaudeRanker{client: client, model: model}
}

func (c *ClaudeRanker) Name() string { return "claude" }

func (c *ClaudeRanker) Generate(ctx context.Context, prompt string) (string, error) {
	temp := 0.1
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   4096,
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	resp.Usage.LogCost(c.model, "rank")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("recommend: empty claude response")
	}
	return text, nil
}

// Generators builds the ranker chain from configuration. Providers without a
// key are skipped; an empty chain means every request uses the rule-based
// fallback.
func Generators(ctx context.Context, cfg *config.Config) []TextGenerator {
	var gens []TextGenerator

	if cfg.Gemini.Key != "" {
		client, err := gemini.NewClient(ctx, cfg.Gemini.Key)
		if err != nil {
			zap.L().Warn("gemini client unavailable", zap.Error(err))
		} else {
			gens = append(gens, NewGeminiRanker(client, cfg.Gemini.Models))
		}
	}
	if cfg.Anthropic.Key != "" {
		gens = append(gens, NewClaudeRanker(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model))
	}
	if len(gens) == 0 {
		zap.L().Info("no LLM API keys configured, rankings will be rule-based")
	}
	return gens
}
