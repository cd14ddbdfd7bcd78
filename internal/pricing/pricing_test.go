package pricing

import (
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestModelPricing_Cost(t *testing.T) {
	p := ModelPricing{InputPer1M: 3, OutputPer1M: 15, CacheReadPer1M: 0.3, CacheWritePer1M: 3.75}
	usage := models.TokenUsage{
		InputTokens:              1_000_000,
		OutputTokens:             100_000,
		CacheReadInputTokens:     1_000_000,
		CacheCreationInputTokens: 0,
	}

	assert.InDelta(t, 3+1.5+0.3, p.Cost(usage), 1e-9)
	assert.InDelta(t, 2.7, p.CacheSavings(1_000_000), 1e-9)
}

func TestTable_Lookup(t *testing.T) {
	table := Default()

	tests := []struct {
		name   string
		model  string
		wantIn float64
		wantOK bool
	}{
		{"exact", "gpt-4o", 2.50, true},
		{"longest key wins", "gpt-4o-mini-2024-07-18", 0.15, true},
		{"bedrock id", "us.anthropic.claude-3-5-sonnet-20240620-v1:0", 3.00, true},
		{"case insensitive", "Claude-Opus-4-20250514", 15.00, true},
		{"unknown", "llama-3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := table.Lookup(tt.model)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIn, p.InputPer1M)
		})
	}
}

func TestTable_BatchCostIsDiscounted(t *testing.T) {
	table := NewTable(map[string]ModelPricing{"m": {InputPer1M: 10, OutputPer1M: 20}})
	usage := models.TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}

	assert.InDelta(t, 30.0, table.Cost("m", usage), 1e-9)
	assert.InDelta(t, 15.0, table.BatchCost("m", usage), 1e-9)
	assert.Zero(t, table.Cost("other", usage))
}

func TestTable_Merge(t *testing.T) {
	table := Default()
	table.Merge(map[string]ModelPricing{"gpt-4o": {InputPer1M: 1}})

	p, ok := table.Lookup("gpt-4o")
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.InputPer1M)
}
