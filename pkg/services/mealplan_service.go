package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// MealPlanService manages a user's weekly meal plan. Each user has one plan;
// it is created lazily on first access.
type MealPlanService struct {
	repo   repositories.MealPlanRepository
	logger *zap.Logger
}

// NewMealPlanService creates a new MealPlanService.
func NewMealPlanService(repo repositories.MealPlanRepository, logger *zap.Logger) *MealPlanService {
	return &MealPlanService{
		repo:   repo,
		logger: logger.Named("meal_plan"),
	}
}

// GetPlan returns the user's plan, creating an empty week on first access.
func (s *MealPlanService) GetPlan(ctx context.Context, userID int64) (*models.MealPlan, error) {
	plan, err := s.repo.GetForUser(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Info("creating meal plan", zap.Int64("user_id", userID))
		return s.repo.Create(ctx, userID, models.Sunday)
	}
	return plan, err
}

// AddMeal plans a recipe into a day's lunch or dinner slot.
func (s *MealPlanService) AddMeal(ctx context.Context, planID int64, day models.DayOfWeek, mealType models.MealType, recipeID int64) (int64, error) {
	if !models.ValidDayOfWeek(day) {
		return 0, fmt.Errorf("invalid day of week %q", day)
	}
	if mealType != models.MealTypeLunch && mealType != models.MealTypeDinner {
		return 0, fmt.Errorf("invalid meal type %q", mealType)
	}
	return s.repo.AddMeal(ctx, planID, day, mealType, recipeID)
}

// RemoveMeal takes a planned meal off the plan.
func (s *MealPlanService) RemoveMeal(ctx context.Context, planID, mealID int64) error {
	return s.repo.RemoveMeal(ctx, planID, mealID)
}

// SetWeekStart changes which day the plan's week begins on and reorders
// the days to match.
func (s *MealPlanService) SetWeekStart(ctx context.Context, planID int64, day models.DayOfWeek) error {
	if !models.ValidDayOfWeek(day) {
		return fmt.Errorf("invalid day of week %q", day)
	}
	return s.repo.UpdateWeekStart(ctx, planID, day)
}
