// Package llm provides an Anthropic-backed client for structured extraction,
// with usage accounting and bounded-concurrency helpers.
package llm

import (
	"context"
)

// SystemBlock is one part of a system prompt. Cacheable blocks are marked
// with the provider's ephemeral cache control so repeated calls within a
// batch read the prompt from cache.
type SystemBlock struct {
	Text  string
	Cache bool
}

// ObjectRequest describes a structured-extraction call: system instructions,
// user content, and sampling parameters. The target schema is conveyed in
// the prompt text; the response is expected to be a single JSON object.
type ObjectRequest struct {
	System      []SystemBlock
	Prompt      string
	MaxTokens   int     // Defaults to the client's configured maximum
	Temperature float32 // Defaults to 0.1 for extraction determinism
}

// ObjectResult holds the raw model output and the usage consumed by the call.
type ObjectResult struct {
	Raw   string
	Usage UsageStats
}

// Client is the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// GenerateObject runs a structured-extraction call and returns the raw
	// response text plus usage. Callers decode and validate the JSON.
	GenerateObject(ctx context.Context, req ObjectRequest) (*ObjectResult, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure AnthropicClient implements Client at compile time.
var _ Client = (*AnthropicClient)(nil)
