package config

import (
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/conflict"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/detection"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
)

// JudgeConfig is the evaluation configuration read from configs/judge.yaml.
type JudgeConfig struct {
	Judge     JudgeSettings                   `yaml:"judge"`
	Detection DetectionSettings               `yaml:"detection"`
	Domains   []conflict.DomainRule           `yaml:"domains" validate:"dive"`
	Pricing   map[string]pricing.ModelPricing `yaml:"pricing" validate:"dive"`
}

// JudgeSettings holds the rubric prompts and sampling parameters.
type JudgeSettings struct {
	SystemPrompt    string      `yaml:"system_prompt" validate:"required"`
	UserPrompt      string      `yaml:"user_prompt" validate:"required"`
	Model           ModelConfig `yaml:"model"`
	NumSamples      int         `yaml:"num_samples" validate:"gte=1,lte=10"`
	AggregateMethod string      `yaml:"aggregate_method" validate:"oneof=mean"`
	Structured      bool        `yaml:"structured"`
}

type ModelConfig struct {
	ID          string  `yaml:"id"`
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=0"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=1"`
}

type DetectionSettings struct {
	Mode      models.DetectionMode `yaml:"mode" validate:"omitempty,oneof=programmatic_first llm_only"`
	ToolRules []detection.ToolRule `yaml:"tool_rules" validate:"dive"`
}
