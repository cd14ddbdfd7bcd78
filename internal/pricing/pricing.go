// Package pricing converts token usage into USD.
package pricing

import (
	"sort"
	"strings"
	"sync"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

// BatchDiscount is the flat multiplier applied to batch job usage.
const BatchDiscount = 0.5

// ModelPricing holds prices per 1 million tokens.
type ModelPricing struct {
	InputPer1M      float64 `yaml:"input_per_1m" validate:"min=0"`
	OutputPer1M     float64 `yaml:"output_per_1m" validate:"min=0"`
	CacheReadPer1M  float64 `yaml:"cache_read_per_1m" validate:"min=0"`
	CacheWritePer1M float64 `yaml:"cache_write_per_1m" validate:"min=0"`
}

// Cost = input + output + cache read + cache write, each per 1M tokens.
func (m ModelPricing) Cost(usage models.TokenUsage) float64 {
	return perMillion(usage.InputTokens, m.InputPer1M) +
		perMillion(usage.OutputTokens, m.OutputPer1M) +
		perMillion(usage.CacheReadInputTokens, m.CacheReadPer1M) +
		perMillion(usage.CacheCreationInputTokens, m.CacheWritePer1M)
}

// CacheSavings is what the cache-read tokens would have cost at the full
// input price minus what they did cost.
func (m ModelPricing) CacheSavings(cacheReadTokens int) float64 {
	return perMillion(cacheReadTokens, m.InputPer1M-m.CacheReadPer1M)
}

func perMillion(tokens int, price float64) float64 {
	return float64(tokens) / 1_000_000.0 * price
}

// Table maps model ids to prices. Lookups fall back to the longest key
// contained in the model id, so regional or versioned ids such as
// "us.anthropic.claude-3-5-sonnet-20240620-v1:0" resolve.
type Table struct {
	mu     sync.RWMutex
	models map[string]ModelPricing
}

func NewTable(prices map[string]ModelPricing) *Table {
	t := &Table{models: make(map[string]ModelPricing, len(prices))}
	for id, p := range prices {
		t.models[normalize(id)] = p
	}
	return t
}

// Default returns list prices for the Claude and GPT families.
func Default() *Table {
	return NewTable(map[string]ModelPricing{
		"claude-3-haiku":    {InputPer1M: 0.25, OutputPer1M: 1.25, CacheReadPer1M: 0.03, CacheWritePer1M: 0.30},
		"claude-3-5-haiku":  {InputPer1M: 0.80, OutputPer1M: 4.00, CacheReadPer1M: 0.08, CacheWritePer1M: 1.00},
		"claude-haiku-4-5":  {InputPer1M: 1.00, OutputPer1M: 5.00, CacheReadPer1M: 0.10, CacheWritePer1M: 1.25},
		"claude-3-5-sonnet": {InputPer1M: 3.00, OutputPer1M: 15.00, CacheReadPer1M: 0.30, CacheWritePer1M: 3.75},
		"claude-3-7-sonnet": {InputPer1M: 3.00, OutputPer1M: 15.00, CacheReadPer1M: 0.30, CacheWritePer1M: 3.75},
		"claude-sonnet-4":   {InputPer1M: 3.00, OutputPer1M: 15.00, CacheReadPer1M: 0.30, CacheWritePer1M: 3.75},
		"claude-opus-4":     {InputPer1M: 15.00, OutputPer1M: 75.00, CacheReadPer1M: 1.50, CacheWritePer1M: 18.75},
		"gpt-4o":            {InputPer1M: 2.50, OutputPer1M: 10.00, CacheReadPer1M: 1.25},
		"gpt-4o-mini":       {InputPer1M: 0.15, OutputPer1M: 0.60, CacheReadPer1M: 0.075},
		"gpt-4.1":           {InputPer1M: 2.00, OutputPer1M: 8.00, CacheReadPer1M: 0.50},
		"gpt-4.1-mini":      {InputPer1M: 0.40, OutputPer1M: 1.60, CacheReadPer1M: 0.10},
	})
}

// Merge overwrites existing entries with the given prices.
func (t *Table) Merge(prices map[string]ModelPricing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, p := range prices {
		t.models[normalize(id)] = p
	}
}

func (t *Table) Lookup(model string) (ModelPricing, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	model = normalize(model)
	if p, ok := t.models[model]; ok {
		return p, true
	}

	keys := make([]string, 0, len(t.models))
	for k := range t.models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if strings.Contains(model, k) {
			return t.models[k], true
		}
	}
	return ModelPricing{}, false
}

// Cost returns zero for unknown models.
func (t *Table) Cost(model string, usage models.TokenUsage) float64 {
	p, ok := t.Lookup(model)
	if !ok {
		return 0
	}
	return p.Cost(usage)
}

func (t *Table) BatchCost(model string, usage models.TokenUsage) float64 {
	return t.Cost(model, usage) * BatchDiscount
}

func normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
