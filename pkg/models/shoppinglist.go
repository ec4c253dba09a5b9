package models

// ShoppingListItem is one line on a meal plan's shopping list. RecipeID is
// nil for free-form items the user typed in.
type ShoppingListItem struct {
	ID             int64   `json:"id"`
	MealPlanID     int64   `json:"meal_plan_id"`
	RecipeID       *int64  `json:"recipe_id"`
	RecipeName     *string `json:"recipe_name"`
	IngredientText string  `json:"ingredient_text"`
	Checked        bool    `json:"checked"`
	SortOrder      int     `json:"sort_order"`
}

// NewShoppingListItem is the input shape for replacing a shopping list.
type NewShoppingListItem struct {
	RecipeID       *int64 `json:"recipe_id"`
	IngredientText string `json:"ingredient_text"`
}

// ShoppingList groups a meal plan's items for the API.
type ShoppingList struct {
	MealPlanID int64              `json:"meal_plan_id"`
	Items      []ShoppingListItem `json:"items"`
}
