// Package strategy decides whether a scenario needs an LLM judgment.
package strategy

import "github.com/povarna/generative-ai-agents/trigger-eval/internal/models"

type Decision struct {
	NeedsJudge bool
	Source     models.DetectionSource
	Reason     string
}

// Select is a pure function of its inputs.
func Select(scenarioType models.ScenarioType, expectedTrigger, triggered bool, mode models.DetectionMode) Decision {
	if mode == models.DetectionLLMOnly {
		return Decision{NeedsJudge: true, Source: models.SourceLLM, Reason: "llm-only detection"}
	}

	switch {
	case expectedTrigger && triggered:
		return Decision{NeedsJudge: true, Source: models.SourceBoth, Reason: "quality check"}
	case expectedTrigger && !triggered:
		return Decision{NeedsJudge: true, Source: models.SourceBoth, Reason: "false negative"}
	case scenarioType != models.ScenarioDirect:
		return Decision{NeedsJudge: true, Source: models.SourceBoth, Reason: "ambiguous scenario"}
	case triggered:
		return Decision{NeedsJudge: true, Source: models.SourceBoth, Reason: "false positive"}
	default:
		return Decision{NeedsJudge: false, Source: models.SourceProgrammatic, Reason: "confirmed true negative"}
	}
}
