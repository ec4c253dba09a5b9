package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// pipelineClient answers both parse and match requests deterministically:
// each raw line parses to "<line> base" and matches to a new catalog entry
// of that name. failLine, when set, makes that line's parse fail.
func pipelineClient(failLine string) *llm.MockClient {
	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		if len(req.System) > 0 && strings.Contains(req.System[0].Text, "parsing recipe ingredient text") {
			raw := req.Prompt[strings.LastIndex(req.Prompt, "\n\n")+2:]
			if failLine != "" && raw == failLine {
				return nil, errors.New("model refused")
			}
			return &llm.ObjectResult{Raw: parsedJSON("1", "", raw+" base", "")}, nil
		}
		name := promptTarget(req.Prompt)
		return &llm.ObjectResult{
			Raw: `{"matchedId": null, "standardizedName": "` + name + `", "confidence": "high"}`,
		}, nil
	}
	return mock
}

// promptTarget pulls the quoted ingredient name out of a matching prompt.
func promptTarget(prompt string) string {
	const marker = `Ingredient to match: "`
	start := strings.Index(prompt, marker) + len(marker)
	end := strings.Index(prompt[start:], `"`)
	return prompt[start : start+end]
}

func newTestPipeline(t *testing.T, client llm.Client, bound int) (*IngredientPipeline, *fakeIngredientRepo, *fakeJobRepo) {
	t.Helper()
	repo := newFakeIngredientRepo()
	jobRepo := newFakeJobRepo()
	runner := newRunnerWith(jobRepo)
	logger := zap.NewNop()

	parser := NewIngredientParser(client, logger)
	matcher := NewIngredientMatcher(repo, client, runner, logger)
	pool := llm.NewWorkerPool(bound, logger)
	return NewIngredientPipeline(parser, matcher, pool, runner, logger), repo, jobRepo
}

func TestNormalizePreservesGroupStructureAndOrder(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, pipelineClient(""), 5)

	sauceName := "For the sauce"
	groups := []models.RawIngredientGroup{
		{Items: []string{"2 cups flour", "3 eggs", "1 cup milk"}},
		{Name: sauceName, Items: []string{"1 can tomatoes", "2 cloves garlic"}},
	}

	mapped, err := pipeline.Normalize(context.Background(), groups)
	require.NoError(t, err)
	require.Len(t, mapped, 2)

	assert.Nil(t, mapped[0].Name)
	require.NotNil(t, mapped[1].Name)
	assert.Equal(t, sauceName, *mapped[1].Name)

	require.Len(t, mapped[0].Items, 3)
	assert.Equal(t, "2 cups flour", mapped[0].Items[0].Raw)
	assert.Equal(t, "3 eggs", mapped[0].Items[1].Raw)
	assert.Equal(t, "1 cup milk", mapped[0].Items[2].Raw)

	require.Len(t, mapped[1].Items, 2)
	assert.Equal(t, "1 can tomatoes", mapped[1].Items[0].Raw)
	assert.Equal(t, "2 cloves garlic", mapped[1].Items[1].Raw)

	for _, group := range mapped {
		for _, item := range group.Items {
			assert.NotZero(t, item.IngredientID, "line %q should resolve to a catalog entry", item.Raw)
			assert.Equal(t, item.Raw+" base", item.Name)
		}
	}
}

func TestNormalizeFailsFastOnLineError(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, pipelineClient("3 eggs"), 5)

	groups := []models.RawIngredientGroup{
		{Items: []string{"2 cups flour", "3 eggs", "1 cup milk"}},
	}

	_, err := pipeline.Normalize(context.Background(), groups)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "3 eggs", parseErr.Line)
}

func TestNormalizeRespectsConcurrencyBound(t *testing.T) {
	const bound = 2

	var mu sync.Mutex
	var current, peak int

	mock := llm.NewMockClient()
	mock.GenerateObjectFunc = func(ctx context.Context, req llm.ObjectRequest) (*llm.ObjectResult, error) {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		current--
		mu.Unlock()

		if len(req.System) > 0 && strings.Contains(req.System[0].Text, "parsing recipe ingredient text") {
			raw := req.Prompt[strings.LastIndex(req.Prompt, "\n\n")+2:]
			return &llm.ObjectResult{Raw: parsedJSON("1", "", raw, "")}, nil
		}
		return &llm.ObjectResult{
			Raw: `{"matchedId": null, "standardizedName": "` + promptTarget(req.Prompt) + `", "confidence": "high"}`,
		}, nil
	}

	pipeline, _, _ := newTestPipeline(t, mock, bound)
	groups := []models.RawIngredientGroup{
		{Items: []string{"item one", "item two", "item three", "item four", "item five", "item six"}},
	}

	_, err := pipeline.Normalize(context.Background(), groups)
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, bound)
}

func TestNormalizeEmptyInput(t *testing.T) {
	pipeline, _, _ := newTestPipeline(t, pipelineClient(""), 5)

	mapped, err := pipeline.Normalize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, mapped)
}

func TestNormalizeRecordsStepPerLine(t *testing.T) {
	pipeline, _, jobRepo := newTestPipeline(t, pipelineClient(""), 5)

	groups := []models.RawIngredientGroup{
		{Items: []string{"2 cups flour", "3 eggs"}},
	}

	runner := newRunnerWith(jobRepo)
	_, err := runWorkflow(runner, func(ctx context.Context) error {
		_, err := pipeline.Normalize(ctx, groups)
		return err
	})
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, name := range jobRepo.stepNames() {
		counts[name]++
	}
	assert.Equal(t, 2, counts["process-ingredient"])
	assert.Equal(t, 2, counts["llm-parse-ingredient"])
	assert.Equal(t, 2, counts["match-ingredient-via-exact"])
	assert.Equal(t, 2, counts["match-ingredient-via-llm"])
}
