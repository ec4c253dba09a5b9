package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// ShoppingListService manages the shopping list attached to a meal plan.
type ShoppingListService struct {
	repo      repositories.ShoppingListRepository
	mealPlans repositories.MealPlanRepository
	logger    *zap.Logger
}

// NewShoppingListService creates a new ShoppingListService.
func NewShoppingListService(repo repositories.ShoppingListRepository, mealPlans repositories.MealPlanRepository, logger *zap.Logger) *ShoppingListService {
	return &ShoppingListService{
		repo:      repo,
		mealPlans: mealPlans,
		logger:    logger.Named("shopping_list"),
	}
}

// Replace swaps the plan's list for the given items, dropping blanks, and
// returns the stored list with recipe names resolved.
func (s *ShoppingListService) Replace(ctx context.Context, userID, mealPlanID int64, items []models.NewShoppingListItem) (*models.ShoppingList, error) {
	if err := s.authorize(ctx, userID, mealPlanID); err != nil {
		return nil, err
	}

	cleaned := make([]models.NewShoppingListItem, 0, len(items))
	for _, item := range items {
		item.IngredientText = strings.TrimSpace(item.IngredientText)
		if item.IngredientText != "" {
			cleaned = append(cleaned, item)
		}
	}
	if err := s.repo.ReplaceItems(ctx, mealPlanID, cleaned); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, mealPlanID)
}

// Get returns the plan's shopping list.
func (s *ShoppingListService) Get(ctx context.Context, userID, mealPlanID int64) (*models.ShoppingList, error) {
	if err := s.authorize(ctx, userID, mealPlanID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByMealPlan(ctx, mealPlanID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.ShoppingListItem{}
	}
	return &models.ShoppingList{MealPlanID: mealPlanID, Items: items}, nil
}

// SetChecked marks one item checked or unchecked.
func (s *ShoppingListService) SetChecked(ctx context.Context, userID, mealPlanID, itemID int64, checked bool) error {
	if err := s.authorize(ctx, userID, mealPlanID); err != nil {
		return err
	}
	return s.repo.SetChecked(ctx, mealPlanID, itemID, checked)
}

// Clear empties the plan's shopping list.
func (s *ShoppingListService) Clear(ctx context.Context, userID, mealPlanID int64) error {
	if err := s.authorize(ctx, userID, mealPlanID); err != nil {
		return err
	}
	return s.repo.Clear(ctx, mealPlanID)
}

func (s *ShoppingListService) authorize(ctx context.Context, userID, mealPlanID int64) error {
	plan, err := s.mealPlans.GetForUser(ctx, userID)
	if err != nil {
		return err
	}
	if plan.ID != mealPlanID {
		return fmt.Errorf("meal plan %d does not belong to user %d", mealPlanID, userID)
	}
	return nil
}
