package repositories

import (
	"context"
	"fmt"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/database"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// ShoppingListRepository provides data access for meal plan shopping lists.
type ShoppingListRepository interface {
	// ReplaceItems atomically swaps the plan's list for the given items,
	// preserving their order.
	ReplaceItems(ctx context.Context, mealPlanID int64, items []models.NewShoppingListItem) error
	ListByMealPlan(ctx context.Context, mealPlanID int64) ([]models.ShoppingListItem, error)
	SetChecked(ctx context.Context, mealPlanID, itemID int64, checked bool) error
	Clear(ctx context.Context, mealPlanID int64) error
}

type shoppingListRepository struct {
	db *database.DB
}

// NewShoppingListRepository creates a new ShoppingListRepository.
func NewShoppingListRepository(db *database.DB) ShoppingListRepository {
	return &shoppingListRepository{db: db}
}

var _ ShoppingListRepository = (*shoppingListRepository)(nil)

func (r *shoppingListRepository) ReplaceItems(ctx context.Context, mealPlanID int64, items []models.NewShoppingListItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `DELETE FROM shopping_list_items WHERE meal_plan_id = $1`, mealPlanID)
	if err != nil {
		return fmt.Errorf("failed to clear shopping list: %w", err)
	}

	for i, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO shopping_list_items (meal_plan_id, recipe_id, ingredient_text, sort_order)
			VALUES ($1, $2, $3, $4)`,
			mealPlanID, item.RecipeID, item.IngredientText, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert shopping list item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *shoppingListRepository) ListByMealPlan(ctx context.Context, mealPlanID int64) ([]models.ShoppingListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.meal_plan_id, s.recipe_id, rec.name, s.ingredient_text, s.checked, s.sort_order
		FROM shopping_list_items s
		LEFT JOIN recipes rec ON rec.id = s.recipe_id
		WHERE s.meal_plan_id = $1
		ORDER BY s.sort_order`, mealPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shopping list items: %w", err)
	}
	defer rows.Close()

	var items []models.ShoppingListItem
	for rows.Next() {
		var item models.ShoppingListItem
		if err := rows.Scan(&item.ID, &item.MealPlanID, &item.RecipeID, &item.RecipeName, &item.IngredientText, &item.Checked, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *shoppingListRepository) SetChecked(ctx context.Context, mealPlanID, itemID int64, checked bool) error {
	result, err := r.db.Exec(ctx, `
		UPDATE shopping_list_items SET checked = $3
		WHERE meal_plan_id = $1 AND id = $2`,
		mealPlanID, itemID, checked,
	)
	if err != nil {
		return fmt.Errorf("failed to update shopping list item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *shoppingListRepository) Clear(ctx context.Context, mealPlanID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM shopping_list_items WHERE meal_plan_id = $1`, mealPlanID)
	if err != nil {
		return fmt.Errorf("failed to clear shopping list: %w", err)
	}
	return nil
}
