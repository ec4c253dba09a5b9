package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// AnthropicClient provides access to the Anthropic Messages API.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds configuration for creating an LLM client.
type Config struct {
	APIKey    string
	Model     string // e.g. "claude-sonnet-4-20250514"
	MaxTokens int    // Default cap for responses (default: 2048)
}

// NewAnthropicClient creates a new Anthropic-backed client.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &AnthropicClient{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("llm"),
	}, nil
}

// GenerateObject runs a structured-extraction call.
// Usage is derived from the response token counts using the pricing table,
// including cache-creation and cache-read tokens when prompt caching hits.
func (c *AnthropicClient) GenerateObject(ctx context.Context, req ObjectRequest) (*ObjectResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	var system []anthropic.MessageSystemPart
	for _, block := range req.System {
		part := anthropic.MessageSystemPart{
			Type: "text",
			Text: block.Text,
		}
		if block.Cache {
			part.CacheControl = &anthropic.MessageCacheControl{
				Type: anthropic.CacheControlTypeEphemeral,
			}
		}
		system = append(system, part)
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)),
		zap.Float32("temperature", temperature))

	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MultiSystem: system,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError(err)
	}

	text := ""
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			text = *block.Text
			break
		}
	}
	if text == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	usage := CalculateUsage(c.model,
		int64(resp.Usage.InputTokens),
		int64(resp.Usage.OutputTokens),
		int64(resp.Usage.CacheCreationInputTokens),
		int64(resp.Usage.CacheReadInputTokens))

	c.logger.Info("LLM request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Int("cache_read_tokens", resp.Usage.CacheReadInputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &ObjectResult{
		Raw:   text,
		Usage: usage,
	}, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.model
}
