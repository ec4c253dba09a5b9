package llm

// UsageStats tracks token counts and estimated monetary cost across LLM calls.
// All cost fields are USD. Stats merge additively; costs are computed once per
// raw API call from the pricing table and only summed afterwards.
type UsageStats struct {
	InputTokens              int64   `json:"inputTokens"`
	OutputTokens             int64   `json:"outputTokens"`
	TotalTokens              int64   `json:"totalTokens"`
	CacheCreationInputTokens int64   `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     int64   `json:"cacheReadInputTokens"`
	InputCost                float64 `json:"inputCost"`
	OutputCost               float64 `json:"outputCost"`
	TotalCost                float64 `json:"totalCost"`
	EstimatedCost            float64 `json:"estimatedCost"`
}

// Add merges other into u by pairwise addition of every field.
// Merging is associative and commutative.
func (u *UsageStats) Add(other UsageStats) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
	u.InputCost += other.InputCost
	u.OutputCost += other.OutputCost
	u.TotalCost += other.TotalCost
	u.EstimatedCost += other.EstimatedCost
}

// Merge returns the sum of any number of usage records.
func Merge(stats ...UsageStats) UsageStats {
	var total UsageStats
	for _, s := range stats {
		total.Add(s)
	}
	return total
}

// ModelPricing holds per-model token prices in USD per million tokens.
type ModelPricing struct {
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// defaultPricing applies when a model has no entry in modelPricing.
var defaultPricing = ModelPricing{
	InputPerMTok:      3.00,
	OutputPerMTok:     15.00,
	CacheWritePerMTok: 3.75,
	CacheReadPerMTok:  0.30,
}

var modelPricing = map[string]ModelPricing{
	"claude-sonnet-4-20250514": {
		InputPerMTok:      3.00,
		OutputPerMTok:     15.00,
		CacheWritePerMTok: 3.75,
		CacheReadPerMTok:  0.30,
	},
	"claude-3-5-haiku-20241022": {
		InputPerMTok:      0.80,
		OutputPerMTok:     4.00,
		CacheWritePerMTok: 1.00,
		CacheReadPerMTok:  0.08,
	},
}

// PricingFor returns the pricing table entry for a model, falling back to
// the default Sonnet-class pricing for unknown models.
func PricingFor(model string) ModelPricing {
	if p, ok := modelPricing[model]; ok {
		return p
	}
	return defaultPricing
}

const tokensPerMillion = 1_000_000

// CalculateUsage derives a UsageStats from the raw token counts of a single
// API call. TotalCost covers plain input+output tokens; EstimatedCost adds
// cache-write and cache-read token charges on top.
func CalculateUsage(model string, inputTokens, outputTokens, cacheCreation, cacheRead int64) UsageStats {
	p := PricingFor(model)

	inputCost := float64(inputTokens) * p.InputPerMTok / tokensPerMillion
	outputCost := float64(outputTokens) * p.OutputPerMTok / tokensPerMillion
	cacheWriteCost := float64(cacheCreation) * p.CacheWritePerMTok / tokensPerMillion
	cacheReadCost := float64(cacheRead) * p.CacheReadPerMTok / tokensPerMillion

	return UsageStats{
		InputTokens:              inputTokens,
		OutputTokens:             outputTokens,
		TotalTokens:              inputTokens + outputTokens,
		CacheCreationInputTokens: cacheCreation,
		CacheReadInputTokens:     cacheRead,
		InputCost:                inputCost,
		OutputCost:               outputCost,
		TotalCost:                inputCost + outputCost,
		EstimatedCost:            inputCost + outputCost + cacheWriteCost + cacheReadCost,
	}
}
