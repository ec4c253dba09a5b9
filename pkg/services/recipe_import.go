package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/jobs"
	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// RecipeImportService runs the full add-recipe workflow: scrape the page,
// extract structured data, normalize every ingredient line, persist the
// recipe. The whole run is recorded as one audited job.
type RecipeImportService struct {
	scraper   *RecipeScraper
	extractor *RecipeExtractor
	pipeline  *IngredientPipeline
	recipes   repositories.RecipeRepository
	runner    *jobs.Runner
	logger    *zap.Logger
}

// NewRecipeImportService creates a new RecipeImportService.
func NewRecipeImportService(
	scraper *RecipeScraper,
	extractor *RecipeExtractor,
	pipeline *IngredientPipeline,
	recipes repositories.RecipeRepository,
	runner *jobs.Runner,
	logger *zap.Logger,
) *RecipeImportService {
	return &RecipeImportService{
		scraper:   scraper,
		extractor: extractor,
		pipeline:  pipeline,
		recipes:   recipes,
		runner:    runner,
		logger:    logger.Named("recipe_import"),
	}
}

// ImportFromURL imports the recipe at url and returns the new recipe id.
func (s *RecipeImportService) ImportFromURL(ctx context.Context, url string) (int64, error) {
	id, err := jobs.Run(ctx, s.runner, "add-recipe", func(ctx context.Context) (int64, error) {
		content, err := jobs.Step(ctx, s.runner, "scrape-data", url,
			func(ctx context.Context) (string, error) {
				return s.scraper.FetchCleanContent(ctx, url)
			})
		if err != nil {
			return 0, err
		}

		recipe, _, err := jobs.LLMStep(ctx, s.runner, "extract-recipe", content,
			func(ctx context.Context) (models.RecipeData, llm.UsageStats, error) {
				return s.extractor.Extract(ctx, content)
			})
		if err != nil {
			return 0, err
		}

		groups, err := s.pipeline.Normalize(ctx, recipe.IngredientGroups)
		if err != nil {
			return 0, err
		}

		return jobs.Step(ctx, s.runner, "save-recipe", recipe.Name,
			func(ctx context.Context) (int64, error) {
				return s.recipes.Save(ctx, &repositories.SaveRecipeInput{
					Name:         recipe.Name,
					PrepTime:     recipe.PrepTime,
					CookTime:     recipe.CookTime,
					TotalTime:    recipe.TotalTime,
					Servings:     recipe.Servings,
					Cuisine:      recipe.Cuisine,
					SourceURL:    url,
					Groups:       groups,
					Instructions: recipe.Instructions,
					Notes:        recipe.Notes,
				})
			})
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("imported recipe", zap.String("url", url), zap.Int64("recipe_id", id))
	return id, nil
}
