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

// SaveRecipeInput is a fully normalized recipe ready for persistence.
type SaveRecipeInput struct {
	Name         string
	PrepTime     string
	CookTime     string
	TotalTime    string
	Servings     string
	Cuisine      string
	SourceURL    string
	Groups       []models.MappedIngredientGroup
	Instructions []string
	Notes        []string
}

// RecipeRepository provides data access for persisted recipes.
type RecipeRepository interface {
	// Save writes the recipe with all groups, ingredients, instructions
	// and notes in one transaction and returns the new recipe id.
	Save(ctx context.Context, input *SaveRecipeInput) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	List(ctx context.Context) ([]models.RecipeSummary, error)
	Delete(ctx context.Context, id int64) error
}

type recipeRepository struct {
	db *database.DB
}

// NewRecipeRepository creates a new RecipeRepository.
func NewRecipeRepository(db *database.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

var _ RecipeRepository = (*recipeRepository)(nil)

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *recipeRepository) Save(ctx context.Context, input *SaveRecipeInput) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var recipeID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO recipes (name, prep_time, cook_time, total_time, servings, cuisine, source_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		input.Name,
		nullString(input.PrepTime),
		nullString(input.CookTime),
		nullString(input.TotalTime),
		nullString(input.Servings),
		nullString(input.Cuisine),
		nullString(input.SourceURL),
	).Scan(&recipeID)
	if err != nil {
		return 0, fmt.Errorf("failed to create recipe: %w", err)
	}

	for groupIndex, group := range input.Groups {
		var groupID int64
		err = tx.QueryRow(ctx, `
			INSERT INTO recipe_ingredient_groups (recipe_id, name, sort_order)
			VALUES ($1, $2, $3)
			RETURNING id`,
			recipeID, group.Name, groupIndex,
		).Scan(&groupID)
		if err != nil {
			return 0, fmt.Errorf("failed to create ingredient group: %w", err)
		}

		for itemIndex, item := range group.Items {
			_, err = tx.Exec(ctx, `
				INSERT INTO recipe_ingredients (group_id, ingredient, ingredient_id, quantity, unit, note, sort_order)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				groupID, item.Raw, item.IngredientID, item.Quantity, item.Unit, item.Note, itemIndex,
			)
			if err != nil {
				return 0, fmt.Errorf("failed to create recipe ingredient: %w", err)
			}
		}
	}

	for stepIndex, instruction := range input.Instructions {
		_, err = tx.Exec(ctx, `
			INSERT INTO recipe_instructions (recipe_id, instruction, step_number)
			VALUES ($1, $2, $3)`,
			recipeID, instruction, stepIndex+1,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create instruction: %w", err)
		}
	}

	for noteIndex, note := range input.Notes {
		_, err = tx.Exec(ctx, `
			INSERT INTO recipe_notes (recipe_id, note, sort_order)
			VALUES ($1, $2, $3)`,
			recipeID, note, noteIndex,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create note: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit recipe: %w", err)
	}
	return recipeID, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	var prepTime, cookTime, totalTime, servings, cuisine, sourceURL *string
	err := r.db.QueryRow(ctx, `
		SELECT id, name, prep_time, cook_time, total_time, servings, cuisine, source_url, created_at
		FROM recipes WHERE id = $1`, id,
	).Scan(&recipe.ID, &recipe.Name, &prepTime, &cookTime, &totalTime, &servings, &cuisine, &sourceURL, &recipe.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	recipe.PrepTime = deref(prepTime)
	recipe.CookTime = deref(cookTime)
	recipe.TotalTime = deref(totalTime)
	recipe.Servings = deref(servings)
	recipe.Cuisine = deref(cuisine)
	recipe.SourceURL = deref(sourceURL)

	groups, err := r.loadGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	recipe.Groups = groups

	recipe.Instructions, err = r.loadInstructions(ctx, id)
	if err != nil {
		return nil, err
	}

	recipe.Notes, err = r.loadNotes(ctx, id)
	if err != nil {
		return nil, err
	}

	return &recipe, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *recipeRepository) loadGroups(ctx context.Context, recipeID int64) ([]models.RecipeIngredientGroup, error) {
	rows, err := r.db.Query(ctx, `
		SELECT g.id, g.name, g.sort_order,
		       ri.id, ri.ingredient, ri.ingredient_id, coalesce(i.name, ''),
		       ri.quantity, ri.unit, ri.note, ri.sort_order
		FROM recipe_ingredient_groups g
		JOIN recipe_ingredients ri ON ri.group_id = g.id
		LEFT JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE g.recipe_id = $1
		ORDER BY g.sort_order, ri.sort_order`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient groups: %w", err)
	}
	defer rows.Close()

	var groups []models.RecipeIngredientGroup
	byID := make(map[int64]int)
	for rows.Next() {
		var groupID int64
		var groupName *string
		var groupSort int
		var item models.RecipeIngredient
		if err := rows.Scan(&groupID, &groupName, &groupSort,
			&item.ID, &item.Raw, &item.IngredientID, &item.IngredientName,
			&item.Quantity, &item.Unit, &item.Note, &item.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}

		idx, ok := byID[groupID]
		if !ok {
			groups = append(groups, models.RecipeIngredientGroup{
				ID:        groupID,
				Name:      groupName,
				SortOrder: groupSort,
			})
			idx = len(groups) - 1
			byID[groupID] = idx
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}
	return groups, rows.Err()
}

func (r *recipeRepository) loadInstructions(ctx context.Context, recipeID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT instruction FROM recipe_instructions
		WHERE recipe_id = $1 ORDER BY step_number`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load instructions: %w", err)
	}
	defer rows.Close()

	var instructions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan instruction: %w", err)
		}
		instructions = append(instructions, s)
	}
	return instructions, rows.Err()
}

func (r *recipeRepository) loadNotes(ctx context.Context, recipeID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT note FROM recipe_notes
		WHERE recipe_id = $1 ORDER BY sort_order`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, s)
	}
	return notes, rows.Err()
}

func (r *recipeRepository) List(ctx context.Context) ([]models.RecipeSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, coalesce(cuisine, ''), coalesce(source_url, ''), created_at
		FROM recipes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	var out []models.RecipeSummary
	for rows.Next() {
		var s models.RecipeSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Cuisine, &s.SourceURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recipe summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
