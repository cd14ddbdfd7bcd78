package judge

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

const maxTranscriptChars = 60_000

// PromptData is the value the rubric templates are executed against.
type PromptData struct {
	ScenarioID        string
	ScenarioType      models.ScenarioType
	ComponentType     models.ComponentType
	ExpectedComponent string
	ExpectedTrigger   bool
	Triggered         bool
	UserPrompt        string
	Transcript        string
	Evidence          []string
	AllTriggered      []string
	ConflictReason    string
}

func NewPromptData(scenario models.Scenario, record models.ExecutionRecord, triggered bool, evidence []string, analysis models.ConflictAnalysis) PromptData {
	all := make([]string, 0, len(analysis.AllTriggered))
	for _, ref := range analysis.AllTriggered {
		all = append(all, ref.String())
	}

	var conflictReason string
	if analysis.HasConflict {
		conflictReason = fmt.Sprintf("%s: %s", analysis.Severity, analysis.Reason)
	}

	return PromptData{
		ScenarioID:        scenario.ID,
		ScenarioType:      scenario.ScenarioType,
		ComponentType:     scenario.ComponentType,
		ExpectedComponent: scenario.ExpectedComponent,
		ExpectedTrigger:   scenario.ExpectedTrigger,
		Triggered:         triggered,
		UserPrompt:        scenario.UserPrompt,
		Transcript:        FormatTranscript(record.Transcript),
		Evidence:          evidence,
		AllTriggered:      all,
		ConflictReason:    conflictReason,
	}
}

// FormatTranscript renders messages as "[index] role: content" lines,
// keeping the head of very long transcripts.
func FormatTranscript(messages []models.TranscriptMessage) string {
	var b strings.Builder
	for i, m := range messages {
		fmt.Fprintf(&b, "[%d] %s: %s\n", i, m.Role, strings.TrimSpace(m.Content))
		if b.Len() > maxTranscriptChars {
			out := strings.ToValidUTF8(b.String()[:maxTranscriptChars], "")
			return out + fmt.Sprintf("\n... [truncated, %d of %d messages shown]", i+1, len(messages))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Rubric turns PromptData into completion requests.
type Rubric struct {
	system      *template.Template
	user        *template.Template
	model       string
	maxTokens   int
	temperature float64
}

func NewRubric(settings config.JudgeSettings) (*Rubric, error) {
	system, err := template.New("system").Funcs(config.PromptFuncs).Parse(settings.SystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse system prompt template: %w", err)
	}
	user, err := template.New("user").Funcs(config.PromptFuncs).Parse(settings.UserPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user prompt template: %w", err)
	}

	return &Rubric{
		system:      system,
		user:        user,
		model:       settings.Model.ID,
		maxTokens:   settings.Model.MaxTokens,
		temperature: settings.Model.Temperature,
	}, nil
}

func (r *Rubric) Model() string {
	return r.model
}

func (r *Rubric) Render(data PromptData) (llm.CompletionRequest, error) {
	var system, user bytes.Buffer
	if err := r.system.Execute(&system, data); err != nil {
		return llm.CompletionRequest{}, fmt.Errorf("system template execution failed: %w", err)
	}
	if err := r.user.Execute(&user, data); err != nil {
		return llm.CompletionRequest{}, fmt.Errorf("user template execution failed: %w", err)
	}

	return llm.CompletionRequest{
		SystemPrompt: system.String(),
		UserPrompt:   user.String(),
		Model:        r.model,
		MaxTokens:    r.maxTokens,
		Temperature:  r.temperature,
	}, nil
}
