package models

import (
	"time"
)

type ComponentType string

const (
	ComponentSkill     ComponentType = "skill"
	ComponentAgent     ComponentType = "agent"
	ComponentCommand   ComponentType = "command"
	ComponentHook      ComponentType = "hook"
	ComponentMCPServer ComponentType = "mcp_server"
)

type ScenarioType string

const (
	ScenarioDirect     ScenarioType = "direct"
	ScenarioParaphrase ScenarioType = "paraphrased"
	ScenarioEdgeCase   ScenarioType = "edge_case"
	ScenarioNegative   ScenarioType = "negative"
	ScenarioSemantic   ScenarioType = "semantic"
)

type DetectionMode string

const (
	DetectionProgrammaticFirst DetectionMode = "programmatic_first"
	DetectionLLMOnly           DetectionMode = "llm_only"
)

type DetectionSource string

const (
	SourceProgrammatic DetectionSource = "programmatic"
	SourceLLM          DetectionSource = "llm"
	SourceBoth         DetectionSource = "both"
)

// Input message

// Scenario is one test case: a prompt plus the expected activation outcome.
type Scenario struct {
	ID                    string        `json:"id" validate:"required"`
	ComponentRef          string        `json:"component_ref"`
	ComponentType         ComponentType `json:"component_type" validate:"oneof=skill agent command hook mcp_server"`
	ScenarioType          ScenarioType  `json:"scenario_type" validate:"oneof=direct paraphrased edge_case negative semantic"`
	UserPrompt            string        `json:"user_prompt"`
	ExpectedTrigger       bool          `json:"expected_trigger"`
	ExpectedComponent     string        `json:"expected_component"`
	SemanticVariationType string        `json:"semantic_variation_type,omitempty"`
}

type ExecutionError struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type TokenUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens,omitempty"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens,omitempty"`
}

// TotalInput counts every input token, cached or not.
func (u TokenUsage) TotalInput() int {
	return u.InputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
}

type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ExecutionRecord is produced by the execution stage for one scenario run.
type ExecutionRecord struct {
	ScenarioID        string                `json:"scenario_id"`
	Transcript        []TranscriptMessage   `json:"transcript"`
	DetectedTools     []Capture             `json:"detected_tools"`
	HookResponses     []HookResponseCapture `json:"hook_responses,omitempty"`
	SubagentCaptures  []SubagentCapture     `json:"subagent_captures,omitempty"`
	CostUSD           float64               `json:"cost_usd"`
	APIDurationMs     int64                 `json:"api_duration_ms"`
	NumTurns          int                   `json:"num_turns"`
	PermissionDenials int                   `json:"permission_denials"`
	Errors            []ExecutionError      `json:"errors,omitempty"`
	Model             string                `json:"model,omitempty"`
	Usage             *TokenUsage           `json:"usage,omitempty"`
	Repetition        int                   `json:"repetition,omitempty"`
}

// EvaluationInput is one JSONL line of the evaluation input file.
type EvaluationInput struct {
	Scenario  Scenario        `json:"scenario"`
	Execution ExecutionRecord `json:"execution"`
}
