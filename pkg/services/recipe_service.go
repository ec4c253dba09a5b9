package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// RecipeService serves stored recipes.
type RecipeService struct {
	repo   repositories.RecipeRepository
	logger *zap.Logger
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(repo repositories.RecipeRepository, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		repo:   repo,
		logger: logger.Named("recipes"),
	}
}

// List returns summaries of all recipes, newest first.
func (s *RecipeService) List(ctx context.Context) ([]models.RecipeSummary, error) {
	return s.repo.List(ctx)
}

// Get returns the full recipe aggregate.
func (s *RecipeService) Get(ctx context.Context, id int64) (*models.Recipe, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a recipe and its dependent rows.
func (s *RecipeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted recipe", zap.Int64("id", id))
	return nil
}
