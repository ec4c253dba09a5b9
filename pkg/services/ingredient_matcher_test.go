package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
)

func TestMatchExactSkipsLLM(t *testing.T) {
	repo := newFakeIngredientRepo()
	repo.seed("flour", "salt")

	mock := llm.NewMockClient()
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	matched, err := matcher.Match(context.Background(), "flour")
	require.NoError(t, err)
	assert.Equal(t, "flour", matched.Name)
	assert.Zero(t, mock.GenerateObjectCalls(), "exact match must not call the LLM")
}

func TestMatchExactIsCaseInsensitive(t *testing.T) {
	repo := newFakeIngredientRepo()
	repo.seed("green bell pepper")

	mock := llm.NewMockClient()
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	matched, err := matcher.Match(context.Background(), "Green Bell Pepper")
	require.NoError(t, err)
	assert.Equal(t, "green bell pepper", matched.Name)
	assert.Zero(t, mock.GenerateObjectCalls())
}

func TestMatchViaLLMRefetchesByID(t *testing.T) {
	repo := newFakeIngredientRepo()
	repo.seed("green onion")

	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		// Model echoes a different surface name; resolution must go by id.
		return &llm.ObjectResult{
			Raw: `{"matchedId": 1, "standardizedName": "spring onion", "confidence": "high"}`,
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	matched, err := matcher.Match(context.Background(), "scallion")
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched.ID)
	assert.Equal(t, "green onion", matched.Name)
}

func TestMatchMissingMatchedIDFails(t *testing.T) {
	repo := newFakeIngredientRepo()
	repo.seed("green onion")

	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		return &llm.ObjectResult{
			Raw: `{"matchedId": 99, "standardizedName": "green onion", "confidence": "high"}`,
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	_, err := matcher.Match(context.Background(), "scallion")
	require.Error(t, err)
	var matchErr *MatchError
	require.True(t, errors.As(err, &matchErr))
	assert.Equal(t, "scallion", matchErr.Name)
	assert.Contains(t, err.Error(), "99")
}

func TestMatchCreatesOnNoMatch(t *testing.T) {
	repo := newFakeIngredientRepo()

	mock := llm.NewMockClient()
	var captured llm.ObjectRequest
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		captured = req
		return &llm.ObjectResult{
			Raw: `{"matchedId": null, "standardizedName": "mandarin orange", "confidence": "high"}`,
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	matched, err := matcher.Match(context.Background(), "mandarin oranges")
	require.NoError(t, err)
	assert.Equal(t, "mandarin orange", matched.Name)
	assert.Contains(t, captured.Prompt, "No existing ingredients in database yet.")

	// Created entry is in the catalog now.
	found, err := repo.FindByName(context.Background(), "mandarin orange")
	require.NoError(t, err)
	assert.Equal(t, matched.ID, found.ID)
}

func TestMatchIsIdempotentAcrossRuns(t *testing.T) {
	repo := newFakeIngredientRepo()

	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		return &llm.ObjectResult{
			Raw: `{"matchedId": null, "standardizedName": "olive oil", "confidence": "high"}`,
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	first, err := matcher.Match(context.Background(), "olive oil")
	require.NoError(t, err)
	llmCalls := mock.GenerateObjectCalls()

	// Second run hits the exact phase and costs nothing.
	second, err := matcher.Match(context.Background(), "olive oil")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, llmCalls, mock.GenerateObjectCalls())
}

func TestMatchCandidateListInPrompt(t *testing.T) {
	repo := newFakeIngredientRepo()
	repo.seed("red onion", "yellow onion")

	mock := llm.NewMockClient()
	var captured llm.ObjectRequest
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		captured = req
		return &llm.ObjectResult{
			Raw: `{"matchedId": 1, "standardizedName": "red onion", "confidence": "medium"}`,
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, testRunner(), zap.NewNop())

	_, err := matcher.Match(context.Background(), "onion")
	require.NoError(t, err)
	assert.Contains(t, captured.Prompt, fmt.Sprintf("- ID %d: %q", 1, "red onion"))
	assert.Contains(t, captured.Prompt, fmt.Sprintf("- ID %d: %q", 2, "yellow onion"))
}

func TestMatchRecordsAuditSteps(t *testing.T) {
	repo := newFakeIngredientRepo()
	jobRepo := newFakeJobRepo()
	runner := newRunnerWith(jobRepo)

	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		return &llm.ObjectResult{
			Raw:   `{"matchedId": null, "standardizedName": "basil", "confidence": "high"}`,
			Usage: llm.CalculateUsage("claude-sonnet-4-20250514", 500, 20, 0, 0),
		}, nil
	}
	matcher := NewIngredientMatcher(repo, mock, runner, zap.NewNop())

	_, err := runWorkflow(runner, func(ctx context.Context) error {
		_, err := matcher.Match(ctx, "basil")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"match-ingredient-via-exact", "match-ingredient-via-llm"}, jobRepo.stepNames())
}
