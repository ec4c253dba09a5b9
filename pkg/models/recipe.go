package models

import (
	"fmt"
	"strings"
	"time"
)

// Limits mirrored by the extraction prompt; validation rejects outputs the
// model produced outside them.
const (
	maxRecipeNameLen      = 200
	maxIngredientGroups   = 10
	maxGroupItems         = 30
	maxInstructions       = 30
	maxNotes              = 6
	maxIngredientTextLen  = 200
	maxInstructionTextLen = 500
)

// RawIngredientGroup is an ingredient group as extracted from a page:
// an optional group name and the raw free-text lines, in order.
type RawIngredientGroup struct {
	Name  string   `json:"name,omitempty"`
	Items []string `json:"items"`
}

// RecipeData is the structured recipe extracted from scraped page text,
// before ingredient normalization.
type RecipeData struct {
	Name             string               `json:"name"`
	PrepTime         string               `json:"prepTime,omitempty"`
	CookTime         string               `json:"cookTime,omitempty"`
	TotalTime        string               `json:"totalTime,omitempty"`
	Servings         string               `json:"servings,omitempty"`
	Cuisine          string               `json:"cuisine,omitempty"`
	IngredientGroups []RawIngredientGroup `json:"ingredients"`
	Instructions     []string             `json:"instructions"`
	Notes            []string             `json:"notes,omitempty"`
}

// Validate checks extracted recipe data against the schema.
func (r *RecipeData) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe name is required")
	}
	if len(r.Name) > maxRecipeNameLen {
		return fmt.Errorf("recipe name too long")
	}
	if len(r.IngredientGroups) == 0 {
		return fmt.Errorf("at least one ingredient group is required")
	}
	if len(r.IngredientGroups) > maxIngredientGroups {
		return fmt.Errorf("too many ingredient groups")
	}
	for i, group := range r.IngredientGroups {
		if len(group.Items) == 0 {
			return fmt.Errorf("ingredient group %d has no items", i)
		}
		if len(group.Items) > maxGroupItems {
			return fmt.Errorf("ingredient group %d has too many items", i)
		}
		for j, item := range group.Items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("ingredient group %d item %d is empty", i, j)
			}
			if len(item) > maxIngredientTextLen {
				return fmt.Errorf("ingredient group %d item %d too long", i, j)
			}
		}
	}
	if len(r.Instructions) == 0 {
		return fmt.Errorf("at least one instruction is required")
	}
	if len(r.Instructions) > maxInstructions {
		return fmt.Errorf("too many instructions")
	}
	for i, inst := range r.Instructions {
		if strings.TrimSpace(inst) == "" {
			return fmt.Errorf("instruction %d is empty", i)
		}
		if len(inst) > maxInstructionTextLen {
			return fmt.Errorf("instruction %d too long", i)
		}
	}
	if len(r.Notes) > maxNotes {
		return fmt.Errorf("too many notes")
	}
	return nil
}

// Recipe is a persisted recipe aggregate.
type Recipe struct {
	ID           int64                   `json:"id"`
	Name         string                  `json:"name"`
	PrepTime     string                  `json:"prep_time,omitempty"`
	CookTime     string                  `json:"cook_time,omitempty"`
	TotalTime    string                  `json:"total_time,omitempty"`
	Servings     string                  `json:"servings,omitempty"`
	Cuisine      string                  `json:"cuisine,omitempty"`
	SourceURL    string                  `json:"source_url,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	Groups       []RecipeIngredientGroup `json:"ingredient_groups,omitempty"`
	Instructions []string                `json:"instructions,omitempty"`
	Notes        []string                `json:"notes,omitempty"`
}

// RecipeIngredientGroup is a persisted ingredient group within a recipe.
type RecipeIngredientGroup struct {
	ID        int64              `json:"id"`
	Name      *string            `json:"name,omitempty"`
	SortOrder int                `json:"sort_order"`
	Items     []RecipeIngredient `json:"items"`
}

// RecipeIngredient is one persisted, normalized ingredient line. Raw keeps
// the original text for backward compatibility and audit.
type RecipeIngredient struct {
	ID             int64   `json:"id"`
	Raw            string  `json:"ingredient"`
	IngredientID   *int64  `json:"ingredient_id,omitempty"`
	IngredientName string  `json:"ingredient_name,omitempty"`
	Quantity       *string `json:"quantity,omitempty"`
	Unit           *string `json:"unit,omitempty"`
	Note           *string `json:"note,omitempty"`
	SortOrder      int     `json:"sort_order"`
}

// RecipeSummary is the list-view projection of a recipe.
type RecipeSummary struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Cuisine   string    `json:"cuisine,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
