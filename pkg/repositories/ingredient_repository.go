package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jinzhu/inflection"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/database"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// DefaultCandidateLimit caps the fuzzy candidate set handed to the
// disambiguation step.
const DefaultCandidateLimit = 20

// IngredientRepository provides data access for the standardized
// ingredient catalog.
type IngredientRepository interface {
	GetByID(ctx context.Context, id int64) (*models.StandardizedIngredient, error)
	// FindByName looks up a catalog entry by case/whitespace-normalized
	// exact name match. Returns apperrors.ErrNotFound on miss.
	FindByName(ctx context.Context, name string) (*models.StandardizedIngredient, error)
	// FindSimilar returns up to limit catalog entries whose name contains
	// any word of the input name. Intentionally permissive to maximize
	// recall for the disambiguation step.
	FindSimilar(ctx context.Context, name string, limit int) ([]models.IngredientRef, error)
	Create(ctx context.Context, name string) (*models.StandardizedIngredient, error)
	Rename(ctx context.Context, id int64, name string) (*models.StandardizedIngredient, error)
	List(ctx context.Context) ([]models.StandardizedIngredient, error)
	ReplaceSubstitutions(ctx context.Context, ingredientID int64, substitutions []string) error
	ListSubstitutions(ctx context.Context, ingredientID int64) ([]string, error)
}

type ingredientRepository struct {
	db *database.DB
}

// NewIngredientRepository creates a new IngredientRepository.
func NewIngredientRepository(db *database.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

var _ IngredientRepository = (*ingredientRepository)(nil)

// NormalizeIngredientName lowercases, trims, and collapses inner whitespace
// so lookups are insensitive to casing and spacing noise.
func NormalizeIngredientName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func (r *ingredientRepository) GetByID(ctx context.Context, id int64) (*models.StandardizedIngredient, error) {
	var ing models.StandardizedIngredient
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM ingredients WHERE id = $1`, id,
	).Scan(&ing.ID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient %d: %w", id, err)
	}
	return &ing, nil
}

func (r *ingredientRepository) FindByName(ctx context.Context, name string) (*models.StandardizedIngredient, error) {
	var ing models.StandardizedIngredient
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM ingredients WHERE lower(name) = $1 ORDER BY id LIMIT 1`,
		NormalizeIngredientName(name),
	).Scan(&ing.ID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ingredient by name: %w", err)
	}
	return &ing, nil
}

// candidateWords expands the input name into distinct search words,
// including singular variants so "peppers" still reaches "pepper" rows.
func candidateWords(name string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(NormalizeIngredientName(name)) {
		for _, w := range []string{word, inflection.Singular(word)} {
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}
	return words
}

func (r *ingredientRepository) FindSimilar(ctx context.Context, name string, limit int) ([]models.IngredientRef, error) {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}

	words := candidateWords(name)
	if len(words) == 0 {
		return nil, nil
	}

	// One ILIKE pattern per word, any match qualifies.
	conditions := make([]string, len(words))
	args := make([]any, 0, len(words)+1)
	for i, word := range words {
		conditions[i] = fmt.Sprintf("name ILIKE $%d", i+1)
		args = append(args, "%"+word+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT id, name FROM ingredients WHERE %s ORDER BY id LIMIT $%d`,
		strings.Join(conditions, " OR "), len(words)+1,
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find similar ingredients: %w", err)
	}
	defer rows.Close()

	var refs []models.IngredientRef
	for rows.Next() {
		var ref models.IngredientRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient candidate: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *ingredientRepository) Create(ctx context.Context, name string) (*models.StandardizedIngredient, error) {
	var ing models.StandardizedIngredient
	err := r.db.QueryRow(ctx,
		`INSERT INTO ingredients (name) VALUES ($1) RETURNING id, name, created_at`,
		strings.TrimSpace(name),
	).Scan(&ing.ID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return &ing, nil
}

func (r *ingredientRepository) Rename(ctx context.Context, id int64, name string) (*models.StandardizedIngredient, error) {
	var ing models.StandardizedIngredient
	err := r.db.QueryRow(ctx,
		`UPDATE ingredients SET name = $2 WHERE id = $1 RETURNING id, name, created_at`,
		id, strings.TrimSpace(name),
	).Scan(&ing.ID, &ing.Name, &ing.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to rename ingredient %d: %w", id, err)
	}
	return &ing, nil
}

func (r *ingredientRepository) List(ctx context.Context) ([]models.StandardizedIngredient, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, created_at FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	defer rows.Close()

	var out []models.StandardizedIngredient
	for rows.Next() {
		var ing models.StandardizedIngredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

func (r *ingredientRepository) ReplaceSubstitutions(ctx context.Context, ingredientID int64, substitutions []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM ingredient_substitutions WHERE ingredient_id = $1`, ingredientID); err != nil {
		return fmt.Errorf("failed to clear substitutions: %w", err)
	}

	for i, sub := range substitutions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO ingredient_substitutions (ingredient_id, substitution, sort_order) VALUES ($1, $2, $3)`,
			ingredientID, sub, i); err != nil {
			return fmt.Errorf("failed to insert substitution: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *ingredientRepository) ListSubstitutions(ctx context.Context, ingredientID int64) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT substitution FROM ingredient_substitutions WHERE ingredient_id = $1 ORDER BY sort_order`,
		ingredientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list substitutions: %w", err)
	}
	defer rows.Close()

	var subs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan substitution: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
