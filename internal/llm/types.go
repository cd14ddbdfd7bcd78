package llm

import (
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

type CompletionRequest struct {
	SystemPrompt string        `json:"system_prompt,omitempty"`
	UserPrompt   string        `json:"user_prompt"`
	Model        string        `json:"model,omitempty"`
	MaxTokens    int           `json:"max_tokens"`
	Temperature  float64       `json:"temperature"`
	Timeout      time.Duration `json:"timeout,omitempty"`
}

type CompletionResponse struct {
	Text       string            `json:"text"`
	StopReason string            `json:"stop_reason,omitempty"`
	Model      string            `json:"model,omitempty"`
	Usage      models.TokenUsage `json:"usage"`
}

type BatchRequest struct {
	CustomID string            `json:"custom_id"`
	Request  CompletionRequest `json:"request"`
}

// BatchResult is the outcome of one request in a batch job. Exactly one of
// Response and Error is set.
type BatchResult struct {
	CustomID string              `json:"custom_id"`
	Response *CompletionResponse `json:"response,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type BatchCounts struct {
	Processing int `json:"processing"`
	Succeeded  int `json:"succeeded"`
	Errored    int `json:"errored"`
	Canceled   int `json:"canceled"`
	Expired    int `json:"expired"`
}

func (c BatchCounts) Total() int {
	return c.Processing + c.Succeeded + c.Errored + c.Canceled + c.Expired
}

// Done reports whether no request is still processing.
func (c BatchCounts) Done() bool {
	return c.Processing == 0
}
