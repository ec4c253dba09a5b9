package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// IngredientParser turns raw ingredient lines into structured fields via the
// LLM. The system prompt is cacheable, so batches share one prompt write.
type IngredientParser struct {
	client llm.Client
	logger *zap.Logger
}

// NewIngredientParser creates a new IngredientParser.
func NewIngredientParser(client llm.Client, logger *zap.Logger) *IngredientParser {
	return &IngredientParser{
		client: client,
		logger: logger.Named("ingredient_parser"),
	}
}

// Parse decomposes one raw ingredient line. The raw text is never mutated;
// the structured fields come back alongside the usage the call consumed.
// Failures wrap ParseError naming the offending line.
func (p *IngredientParser) Parse(ctx context.Context, rawLine string) (models.ParsedIngredient, llm.UsageStats, error) {
	var zero models.ParsedIngredient

	result, err := p.client.GenerateObject(ctx, llm.ObjectRequest{
		System: []llm.SystemBlock{{Text: parsingSystemPrompt, Cache: true}},
		Prompt: fmt.Sprintf("Parse the following ingredient:\n\n%s", rawLine),
	})
	if err != nil {
		return zero, llm.UsageStats{}, &ParseError{Line: rawLine, Cause: err}
	}

	parsed, err := llm.DecodeObject[models.ParsedIngredient](result)
	if err != nil {
		return zero, result.Usage, &ParseError{Line: rawLine, Cause: err}
	}
	if err := parsed.Validate(); err != nil {
		return zero, result.Usage, &ParseError{Line: rawLine, Cause: err}
	}

	p.logger.Debug("parsed ingredient",
		zap.String("raw", rawLine),
		zap.String("name", parsed.Name))
	return parsed, result.Usage, nil
}
