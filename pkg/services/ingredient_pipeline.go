package services

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/jobs"
	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

// IngredientPipeline normalizes every raw ingredient line of a recipe:
// parse, match, resolve to a catalog entry. Lines run concurrently under
// the pool's bound; group structure and item order are preserved in the
// output regardless of completion order.
type IngredientPipeline struct {
	parser  *IngredientParser
	matcher *IngredientMatcher
	pool    *llm.WorkerPool
	runner  *jobs.Runner
	logger  *zap.Logger
}

// NewIngredientPipeline creates a new IngredientPipeline.
func NewIngredientPipeline(parser *IngredientParser, matcher *IngredientMatcher, pool *llm.WorkerPool, runner *jobs.Runner, logger *zap.Logger) *IngredientPipeline {
	return &IngredientPipeline{
		parser:  parser,
		matcher: matcher,
		pool:    pool,
		runner:  runner,
		logger:  logger.Named("ingredient_pipeline"),
	}
}

type pipelineItem struct {
	RawName    string `json:"rawName"`
	GroupIndex int    `json:"groupIndex"`
	itemIndex  int
}

// Normalize processes all lines of all groups and returns mapped groups in
// the original shape. The whole batch fails on the first line error; the
// reported error is the failing line earliest in recipe order, not the one
// that happened to finish first.
func (p *IngredientPipeline) Normalize(ctx context.Context, groups []models.RawIngredientGroup) ([]models.MappedIngredientGroup, error) {
	var flat []pipelineItem
	for groupIndex, group := range groups {
		for itemIndex, raw := range group.Items {
			flat = append(flat, pipelineItem{RawName: raw, GroupIndex: groupIndex, itemIndex: itemIndex})
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make([]llm.WorkItem[models.MappedIngredient], len(flat))
	for i, item := range flat {
		items[i] = llm.WorkItem[models.MappedIngredient]{
			Index: i,
			Execute: func(ctx context.Context) (models.MappedIngredient, error) {
				mapped, err := jobs.Step(ctx, p.runner, "process-ingredient", item,
					func(ctx context.Context) (models.MappedIngredient, error) {
						return p.processLine(ctx, item.RawName)
					})
				if err != nil {
					// Abort lines still queued; in-flight ones finish.
					cancel()
				}
				return mapped, err
			},
		}
	}

	results := llm.Process(ctx, p.pool, items)
	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	if err := firstLineError(results); err != nil {
		return nil, err
	}

	mapped := make([]models.MappedIngredientGroup, len(groups))
	for i, group := range groups {
		mapped[i] = models.MappedIngredientGroup{
			Name:  groupName(group.Name),
			Items: make([]models.MappedIngredient, 0, len(group.Items)),
		}
	}
	for _, result := range results {
		item := flat[result.Index]
		mapped[item.GroupIndex].Items = append(mapped[item.GroupIndex].Items, result.Result)
	}
	return mapped, nil
}

// firstLineError picks the error to surface from a failed batch: the
// earliest real failure in recipe order. Cancellation errors from lines the
// pipeline itself aborted only win when nothing else failed.
func firstLineError(results []llm.WorkResult[models.MappedIngredient]) error {
	var canceled error
	for _, result := range results {
		if result.Err == nil {
			continue
		}
		if errors.Is(result.Err, context.Canceled) {
			if canceled == nil {
				canceled = result.Err
			}
			continue
		}
		return result.Err
	}
	return canceled
}

func groupName(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}

func (p *IngredientPipeline) processLine(ctx context.Context, rawLine string) (models.MappedIngredient, error) {
	var zero models.MappedIngredient

	parsed, _, err := jobs.LLMStep(ctx, p.runner, "llm-parse-ingredient", rawLine,
		func(ctx context.Context) (models.ParsedIngredient, llm.UsageStats, error) {
			return p.parser.Parse(ctx, rawLine)
		})
	if err != nil {
		return zero, err
	}

	matched, err := p.matcher.Match(ctx, parsed.Name)
	if err != nil {
		return zero, err
	}

	return models.MappedIngredient{
		Raw:          rawLine,
		IngredientID: matched.ID,
		Name:         matched.Name,
		Quantity:     parsed.Quantity,
		Unit:         parsed.Unit,
		Note:         parsed.Note,
	}, nil
}
