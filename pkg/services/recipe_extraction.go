package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/retry"
)

// RecipeExtractor turns cleaned page text into structured recipe data.
// Transient provider errors are retried with backoff; usage from every
// attempt counts toward the total.
type RecipeExtractor struct {
	client   llm.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewRecipeExtractor creates a new RecipeExtractor.
func NewRecipeExtractor(client llm.Client, logger *zap.Logger) *RecipeExtractor {
	return &RecipeExtractor{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("recipe_extractor"),
	}
}

// Extract runs structured extraction over cleaned page content and validates
// the result against the recipe schema.
func (e *RecipeExtractor) Extract(ctx context.Context, content string) (models.RecipeData, llm.UsageStats, error) {
	var zero models.RecipeData
	var total llm.UsageStats

	result, err := retry.DoWithResult(ctx, e.retryCfg, func() (*llm.ObjectResult, error) {
		res, err := e.client.GenerateObject(ctx, llm.ObjectRequest{
			Prompt: fmt.Sprintf(extractionPromptTemplate, content),
		})
		if res != nil {
			total.Add(res.Usage)
		}
		return res, err
	})
	if err != nil {
		return zero, total, fmt.Errorf("failed to extract recipe: %w", err)
	}

	recipe, err := llm.DecodeObject[models.RecipeData](result)
	if err != nil {
		return zero, total, fmt.Errorf("failed to extract recipe: %w", err)
	}
	if err := recipe.Validate(); err != nil {
		return zero, total, fmt.Errorf("extracted recipe failed validation: %w", err)
	}

	e.logger.Info("extracted recipe",
		zap.String("name", recipe.Name),
		zap.Int("ingredient_groups", len(recipe.IngredientGroups)),
		zap.Int("instructions", len(recipe.Instructions)))
	return recipe, total, nil
}
