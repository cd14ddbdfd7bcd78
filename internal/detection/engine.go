package detection

import (
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

// Result is the deterministic outcome for one scenario run.
type Result struct {
	Detections []models.Detection
	Unique     []models.Detection
	Triggered  bool
	Evidence   []string
}

type Engine struct {
	runner *Runner
	logger *zerolog.Logger
}

// NewEngine builds the standard, hook and agent detection paths.
func NewEngine(rules []ToolRule, logger *zerolog.Logger) (*Engine, error) {
	if len(rules) == 0 {
		rules = DefaultToolRules()
	}
	standard, err := NewStandardDetector(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{
		runner: NewRunner([]Detector{
			standard,
			NewHookDetector(),
			NewAgentDetector(),
		}),
		logger: logger,
	}, nil
}

func (e *Engine) Detect(scenario models.Scenario, record models.ExecutionRecord) Result {
	in := Input{Scenario: scenario, Record: record}
	detections := e.runner.Run(in)
	unique := Dedupe(detections)

	var triggered bool
	switch scenario.ComponentType {
	case models.ComponentHook:
		triggered = WasExpectedHookTriggered(record.HookResponses, scenario.ExpectedComponent)
	default:
		triggered = WasExpectedComponentTriggered(unique, scenario.ExpectedComponent, scenario.ComponentType)
	}

	evidence := make([]string, 0, len(unique))
	for _, d := range unique {
		evidence = append(evidence, d.Evidence)
	}

	e.logger.Debug().
		Str("scenario_id", scenario.ID).
		Int("detections", len(detections)).
		Int("unique", len(unique)).
		Bool("triggered", triggered).
		Msg("detection complete")

	return Result{
		Detections: detections,
		Unique:     unique,
		Triggered:  triggered,
		Evidence:   evidence,
	}
}
