package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/database"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// MealPlanRepository provides data access for weekly meal plans.
type MealPlanRepository interface {
	// GetForUser loads the user's plan with all days and meals, or
	// apperrors.ErrNotFound when the user has no plan yet.
	GetForUser(ctx context.Context, userID int64) (*models.MealPlan, error)
	// Create makes a new plan with seven empty day rows ordered from the
	// given week start day.
	Create(ctx context.Context, userID int64, weekStart models.DayOfWeek) (*models.MealPlan, error)
	AddMeal(ctx context.Context, planID int64, day models.DayOfWeek, mealType models.MealType, recipeID int64) (int64, error)
	RemoveMeal(ctx context.Context, planID, mealID int64) error
	UpdateWeekStart(ctx context.Context, planID int64, weekStart models.DayOfWeek) error
}

type mealPlanRepository struct {
	db *database.DB
}

// NewMealPlanRepository creates a new MealPlanRepository.
func NewMealPlanRepository(db *database.DB) MealPlanRepository {
	return &mealPlanRepository{db: db}
}

var _ MealPlanRepository = (*mealPlanRepository)(nil)

func (r *mealPlanRepository) GetForUser(ctx context.Context, userID int64) (*models.MealPlan, error) {
	var plan models.MealPlan
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, week_start_day FROM meal_plans WHERE user_id = $1`,
		userID,
	).Scan(&plan.ID, &plan.UserID, &plan.WeekStartDay)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT d.id, d.day_of_week,
		       m.id, m.recipe_id, coalesce(rec.name, ''), m.meal_type, m.sort_order
		FROM meal_plan_days d
		LEFT JOIN meal_plan_meals m ON m.day_id = d.id
		LEFT JOIN recipes rec ON rec.id = m.recipe_id
		WHERE d.meal_plan_id = $1
		ORDER BY d.sort_order, m.meal_type, m.sort_order`, plan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plan days: %w", err)
	}
	defer rows.Close()

	byDay := make(map[int64]int)
	for rows.Next() {
		var dayID int64
		var day models.DayOfWeek
		var mealID, recipeID *int64
		var recipeName string
		var mealType *models.MealType
		var sortOrder *int
		if err := rows.Scan(&dayID, &day, &mealID, &recipeID, &recipeName, &mealType, &sortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan day: %w", err)
		}

		idx, ok := byDay[dayID]
		if !ok {
			plan.Days = append(plan.Days, models.MealPlanDay{
				ID:        dayID,
				DayOfWeek: day,
				Lunch:     []models.MealPlanMeal{},
				Dinner:    []models.MealPlanMeal{},
			})
			idx = len(plan.Days) - 1
			byDay[dayID] = idx
		}
		if mealID == nil {
			continue
		}
		meal := models.MealPlanMeal{
			ID:         *mealID,
			RecipeID:   *recipeID,
			RecipeName: recipeName,
			MealType:   *mealType,
			SortOrder:  *sortOrder,
		}
		switch meal.MealType {
		case models.MealTypeLunch:
			plan.Days[idx].Lunch = append(plan.Days[idx].Lunch, meal)
		case models.MealTypeDinner:
			plan.Days[idx].Dinner = append(plan.Days[idx].Dinner, meal)
		}
	}
	return &plan, rows.Err()
}

func (r *mealPlanRepository) Create(ctx context.Context, userID int64, weekStart models.DayOfWeek) (*models.MealPlan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	plan := &models.MealPlan{UserID: userID, WeekStartDay: weekStart}
	err = tx.QueryRow(ctx, `
		INSERT INTO meal_plans (user_id, week_start_day)
		VALUES ($1, $2)
		RETURNING id`,
		userID, weekStart,
	).Scan(&plan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal plan: %w", err)
	}

	for i, day := range models.WeekDays(weekStart) {
		d := models.MealPlanDay{
			DayOfWeek: day,
			Lunch:     []models.MealPlanMeal{},
			Dinner:    []models.MealPlanMeal{},
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO meal_plan_days (meal_plan_id, day_of_week, sort_order)
			VALUES ($1, $2, $3)
			RETURNING id`,
			plan.ID, day, i,
		).Scan(&d.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create meal plan day: %w", err)
		}
		plan.Days = append(plan.Days, d)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit meal plan: %w", err)
	}
	return plan, nil
}

func (r *mealPlanRepository) AddMeal(ctx context.Context, planID int64, day models.DayOfWeek, mealType models.MealType, recipeID int64) (int64, error) {
	var mealID int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO meal_plan_meals (day_id, recipe_id, meal_type, sort_order)
		SELECT d.id, $3, $4,
		       coalesce((SELECT max(m.sort_order) + 1 FROM meal_plan_meals m WHERE m.day_id = d.id AND m.meal_type = $4), 0)
		FROM meal_plan_days d
		WHERE d.meal_plan_id = $1 AND d.day_of_week = $2
		RETURNING id`,
		planID, day, recipeID, mealType,
	).Scan(&mealID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to add meal: %w", err)
	}
	return mealID, nil
}

func (r *mealPlanRepository) RemoveMeal(ctx context.Context, planID, mealID int64) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM meal_plan_meals m
		USING meal_plan_days d
		WHERE m.id = $2 AND m.day_id = d.id AND d.meal_plan_id = $1`,
		planID, mealID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove meal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mealPlanRepository) UpdateWeekStart(ctx context.Context, planID int64, weekStart models.DayOfWeek) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE meal_plans SET week_start_day = $2 WHERE id = $1`,
		planID, weekStart,
	)
	if err != nil {
		return fmt.Errorf("failed to update week start: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	// Reorder the existing day rows so the plan renders from the new start.
	for i, day := range models.WeekDays(weekStart) {
		_, err = tx.Exec(ctx, `
			UPDATE meal_plan_days SET sort_order = $3
			WHERE meal_plan_id = $1 AND day_of_week = $2`,
			planID, day, i,
		)
		if err != nil {
			return fmt.Errorf("failed to reorder meal plan days: %w", err)
		}
	}

	return tx.Commit(ctx)
}
