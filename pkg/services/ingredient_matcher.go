package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/apperrors"
	"github.com/ladle-labs/ladle-engine/pkg/jobs"
	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
	"github.com/ladle-labs/ladle-engine/pkg/repositories"
)

// IngredientMatcher resolves parsed ingredient names against the catalog.
// Matching is two-phase: an exact lookup that costs no tokens, then LLM
// disambiguation over a fuzzy candidate list. Either way the caller gets a
// catalog entry; a new one is created when nothing matches.
type IngredientMatcher struct {
	repo   repositories.IngredientRepository
	client llm.Client
	runner *jobs.Runner
	logger *zap.Logger
}

// NewIngredientMatcher creates a new IngredientMatcher.
func NewIngredientMatcher(repo repositories.IngredientRepository, client llm.Client, runner *jobs.Runner, logger *zap.Logger) *IngredientMatcher {
	return &IngredientMatcher{
		repo:   repo,
		client: client,
		runner: runner,
		logger: logger.Named("ingredient_matcher"),
	}
}

type matchStepInput struct {
	Name       string                 `json:"name"`
	Candidates []models.IngredientRef `json:"candidates,omitempty"`
}

// Match resolves name to a catalog entry, creating one when no existing
// entry fits. Both phases are recorded as audit steps when a job is running.
func (m *IngredientMatcher) Match(ctx context.Context, name string) (*models.StandardizedIngredient, error) {
	exact, err := jobs.Step(ctx, m.runner, "match-ingredient-via-exact", matchStepInput{Name: name},
		func(ctx context.Context) (*models.StandardizedIngredient, error) {
			ing, err := m.repo.FindByName(ctx, name)
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, nil
			}
			return ing, err
		})
	if err != nil {
		return nil, &MatchError{Name: name, Cause: err}
	}
	if exact != nil {
		return exact, nil
	}

	candidates, err := m.repo.FindSimilar(ctx, name, repositories.DefaultCandidateLimit)
	if err != nil {
		return nil, &MatchError{Name: name, Cause: err}
	}

	match, _, err := jobs.LLMStep(ctx, m.runner, "match-ingredient-via-llm", matchStepInput{Name: name, Candidates: candidates},
		func(ctx context.Context) (models.IngredientMatch, llm.UsageStats, error) {
			return m.matchViaLLM(ctx, name, candidates)
		})
	if err != nil {
		return nil, &MatchError{Name: name, Cause: err}
	}

	if match.MatchedID != nil {
		// Re-fetch by the matched id so a stale or hallucinated name in the
		// model output cannot point us at the wrong entry.
		ing, err := m.repo.GetByID(ctx, *match.MatchedID)
		if err != nil {
			return nil, &MatchError{Name: name, Cause: fmt.Errorf("matched ingredient id %d not found: %w", *match.MatchedID, err)}
		}
		return ing, nil
	}

	created, err := m.repo.Create(ctx, match.StandardizedName)
	if err != nil {
		return nil, &MatchError{Name: name, Cause: err}
	}
	m.logger.Info("created new standardized ingredient",
		zap.String("name", created.Name),
		zap.Int64("id", created.ID))
	return created, nil
}

func (m *IngredientMatcher) matchViaLLM(ctx context.Context, name string, candidates []models.IngredientRef) (models.IngredientMatch, llm.UsageStats, error) {
	var zero models.IngredientMatch

	candidatesText := "No existing ingredients in database yet."
	if len(candidates) > 0 {
		lines := make([]string, len(candidates))
		for i, c := range candidates {
			lines[i] = fmt.Sprintf("- ID %d: %q", c.ID, c.Name)
		}
		candidatesText = strings.Join(lines, "\n")
	}

	prompt := fmt.Sprintf(`Match the following ingredient name to an existing standardized ingredient, or suggest a new standardized name if no good match exists.

Ingredient to match: %q

Existing standardized ingredients:
%s

Determine:
1. If there's a match, provide the matchedId and confidence level
2. If no match, set matchedId to null and suggest a standardized name
3. The standardizedName should be the name to use (either from the matched ingredient or a new suggestion)`, name, candidatesText)

	result, err := m.client.GenerateObject(ctx, llm.ObjectRequest{
		System: []llm.SystemBlock{{Text: matchingSystemPrompt, Cache: true}},
		Prompt: prompt,
	})
	if err != nil {
		return zero, llm.UsageStats{}, err
	}

	match, err := llm.DecodeObject[models.IngredientMatch](result)
	if err != nil {
		return zero, result.Usage, err
	}
	if err := match.Validate(); err != nil {
		return zero, result.Usage, err
	}
	return match, result.Usage, nil
}
