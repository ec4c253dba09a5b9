package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// CatalogService manages the standardized ingredient catalog outside the
// normalization pipeline: listing, renames, and substitution suggestions.
type CatalogService struct {
	repo   repositories.IngredientRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.IngredientRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger.Named("catalog"),
	}
}

// List returns all catalog entries ordered by name.
func (s *CatalogService) List(ctx context.Context) ([]models.StandardizedIngredient, error) {
	return s.repo.List(ctx)
}

// Get returns one catalog entry by id.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.StandardizedIngredient, error) {
	return s.repo.GetByID(ctx, id)
}

// Rename changes an entry's canonical name. Recipes referencing the entry
// by id pick up the new name automatically.
func (s *CatalogService) Rename(ctx context.Context, id int64, name string) (*models.StandardizedIngredient, error) {
	normalized := repositories.NormalizeIngredientName(name)
	if normalized == "" {
		return nil, fmt.Errorf("ingredient name must not be empty")
	}
	renamed, err := s.repo.Rename(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	s.logger.Info("renamed ingredient", zap.Int64("id", id), zap.String("name", renamed.Name))
	return renamed, nil
}

// SetSubstitutions replaces an entry's substitution list. Blank entries are
// dropped; the rest are kept in the given order.
func (s *CatalogService) SetSubstitutions(ctx context.Context, id int64, substitutions []string) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	cleaned := make([]string, 0, len(substitutions))
	for _, sub := range substitutions {
		if trimmed := strings.TrimSpace(sub); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if err := s.repo.ReplaceSubstitutions(ctx, id, cleaned); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// GetSubstitutions returns an entry's substitution list.
func (s *CatalogService) GetSubstitutions(ctx context.Context, id int64) ([]string, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListSubstitutions(ctx, id)
}

// Deduplicate merges duplicate catalog entries created by concurrent
// pipeline runs. Duplicates are tolerated until an operator runs this.
//
// TODO: implement the merge once recipe_ingredients repointing is settled.
func (s *CatalogService) Deduplicate(ctx context.Context) error {
	return apperrors.ErrNotImplemented
}
