// test-ingredient-parsing exercises the ingredient parsing prompt against a
// live Anthropic model. It sends a fixed set of tricky ingredient lines and
// verifies the responses decode into valid parsed ingredients.
//
// Usage: ANTHROPIC_API_KEY=... go run ./scripts/test-ingredient-parsing
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ladle-labs/ladle-engine/pkg/llm"
	"github.com/ladle-labs/ladle-engine/pkg/models"
)

const parsingSystem = `You are an expert at parsing recipe ingredient text into structured components.

Given an ingredient line from a recipe, extract:
- quantity: the numeric amount (as a string, e.g. "2", "1/2", "1.5"), or null if absent
- unit: the unit of measure (e.g. "cup", "tbsp", "g"), or null if absent
- name: the core ingredient name, lowercase, singular where natural
- note: preparation or qualifier text (e.g. "finely chopped", "optional"), or null

Respond with a single JSON object with exactly those four keys and no other text.`

// Lines chosen to stress fractions, missing quantities, and embedded notes.
var sampleLines = []string{
	"2 cups all-purpose flour, sifted",
	"1/2 tsp vanilla extract",
	"salt and pepper to taste",
	"3 large eggs, room temperature",
	"100g dark chocolate (70% cocoa), roughly chopped",
}

func main() {
	model := flag.String("model", "claude-sonnet-4-20250514", "Model to test")
	timeout := flag.Duration("timeout", 60*time.Second, "Timeout for each call")
	flag.Parse()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, _ := logConfig.Build()
	defer logger.Sync()

	client, err := llm.NewAnthropicClient(&llm.Config{
		APIKey:    apiKey,
		Model:     *model,
		MaxTokens: 1024,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Ingredient Parsing Prompt Test (model: %s)\n", *model)
	fmt.Println(strings.Repeat("=", 80))

	var failures int
	var total llm.UsageStats
	for _, line := range sampleLines {
		fmt.Printf("\n%q\n", line)

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		res, err := client.GenerateObject(ctx, llm.ObjectRequest{
			System: []llm.SystemBlock{{Text: parsingSystem, Cache: true}},
			Prompt: fmt.Sprintf("Parse the following ingredient:\n\n%s", line),
		})
		cancel()
		if err != nil {
			fmt.Printf("  FAIL: call error: %v\n", err)
			failures++
			continue
		}
		total.Add(res.Usage)

		parsed, err := llm.DecodeObject[models.ParsedIngredient](res)
		if err != nil {
			fmt.Printf("  FAIL: decode error: %v\n  raw: %s\n", err, res.Raw)
			failures++
			continue
		}
		if err := parsed.Validate(); err != nil {
			fmt.Printf("  FAIL: invalid result: %v\n", err)
			failures++
			continue
		}

		out, _ := json.Marshal(parsed)
		fmt.Printf("  OK: %s\n", out)
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 80))
	fmt.Printf("Lines: %d  Failures: %d  Tokens: %d in / %d out  Cost: $%.4f\n",
		len(sampleLines), failures, total.InputTokens, total.OutputTokens, total.TotalCost)
	if failures > 0 {
		os.Exit(1)
	}
}
