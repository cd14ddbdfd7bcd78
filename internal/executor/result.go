package executor

import (
	"errors"
	"fmt"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/detection"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/judge"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/strategy"
)

// ErrInvariantViolation aborts a run whose results no longer line up 1:1
// with its inputs.
var ErrInvariantViolation = errors.New("evaluation invariant violated")

// JobKey identifies the judgment of one scenario run.
func JobKey(scenarioID string, repetition int) string {
	if repetition > 0 {
		return fmt.Sprintf("%s#r%d", scenarioID, repetition)
	}
	return scenarioID
}

// buildJobs assigns each plan needing a judgment a unique key and returns
// the jobs in input order.
func buildJobs(plans []plan) []judge.Job {
	var jobs []judge.Job
	taken := make(map[string]bool)
	for i := range plans {
		p := &plans[i]
		if !p.decision.NeedsJudge {
			continue
		}
		base := JobKey(p.input.Scenario.ID, p.input.Execution.Repetition)
		key := base
		for n := 0; taken[key]; n++ {
			key = fmt.Sprintf("%s#%d", base, i)
			if n > 0 {
				key = fmt.Sprintf("%s#%d-%d", base, i, n)
			}
		}
		taken[key] = true
		p.key = key

		data := judge.NewPromptData(p.input.Scenario, p.input.Execution, p.detection.Triggered, p.detection.Evidence, p.analysis)
		jobs = append(jobs, judge.Job{Key: key, Data: data})
	}
	return jobs
}

// BuildResult merges detection, conflict analysis and the optional judgment
// into the final result for one run.
func BuildResult(
	in models.EvaluationInput,
	det detection.Result,
	analysis models.ConflictAnalysis,
	decision strategy.Decision,
	judgment *models.MultiSampleResult,
	mode models.DetectionMode,
) models.EvaluationResult {
	s := in.Scenario

	evidence := det.Evidence
	if evidence == nil {
		evidence = []string{}
	}
	all := analysis.AllTriggered
	if all == nil {
		all = []models.ComponentRef{}
	}

	result := models.EvaluationResult{
		ScenarioID:             s.ID,
		ComponentRef:           s.ComponentRef,
		ComponentType:          s.ComponentType,
		Repetition:             in.Execution.Repetition,
		Triggered:              det.Triggered,
		ExpectedTrigger:        s.ExpectedTrigger,
		Confidence:             100,
		Evidence:               evidence,
		Issues:                 []string{},
		DetectionSource:        decision.Source,
		AllTriggeredComponents: all,
		HasConflict:            analysis.HasConflict,
		ConflictSeverity:       analysis.Severity,
		ConflictReason:         analysis.Reason,
	}
	if result.ConflictSeverity == "" {
		result.ConflictSeverity = models.SeverityNone
	}

	for _, execErr := range in.Execution.Errors {
		result.Issues = append(result.Issues, fmt.Sprintf("execution error (%s): %s", orDefault(execErr.Type, "unknown"), execErr.Message))
	}

	if judgment != nil {
		score := judgment.AggregatedScore
		rep := judgment.RepresentativeResponse

		result.Judgment = judgment
		result.QualityScore = &score
		result.Issues = append(result.Issues, judgment.AllIssues...)
		result.Summary = rep.Summary
		result.Highlights = rep.Highlights
		result.JudgmentCostUSD = judgment.TotalCostUSD
		result.JudgeErrors = judgment.ErrorKinds

		if mode == models.DetectionLLMOnly {
			result.Triggered = triggeredFromConsensus(judgment.ConsensusTriggerAccuracy, s.ExpectedTrigger)
			result.Confidence = consensusConfidence(judgment)
		}
	}

	result.Correct = result.Triggered == result.ExpectedTrigger
	return result
}

// triggeredFromConsensus reads the activation outcome off the judges'
// verdict on the expected outcome. A partial verdict means the component
// fired, just not cleanly.
func triggeredFromConsensus(accuracy models.TriggerAccuracy, expected bool) bool {
	switch accuracy {
	case models.AccuracyCorrect:
		return expected
	case models.AccuracyIncorrect:
		return !expected
	default:
		return true
	}
}

func consensusConfidence(j *models.MultiSampleResult) int {
	n := len(j.IndividualScores)
	if n == 0 {
		return 0
	}
	return 100 * j.ConsensusVotes / n
}

func checkJudgments(jobs []judge.Job, judgments map[string]models.MultiSampleResult, samples int) error {
	keys := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		if keys[job.Key] {
			return fmt.Errorf("%w: job key %s is not unique", ErrInvariantViolation, job.Key)
		}
		keys[job.Key] = true
		j, ok := judgments[job.Key]
		if !ok {
			return fmt.Errorf("%w: no judgment for %s", ErrInvariantViolation, job.Key)
		}
		if len(j.IndividualScores) != samples {
			return fmt.Errorf("%w: judgment for %s has %d scores, want %d", ErrInvariantViolation, job.Key, len(j.IndividualScores), samples)
		}
	}
	for key := range judgments {
		if !keys[key] {
			return fmt.Errorf("%w: judgment %s has no matching input", ErrInvariantViolation, key)
		}
	}
	return nil
}

func checkResults(inputs []models.EvaluationInput, results []models.EvaluationResult) error {
	if len(results) != len(inputs) {
		return fmt.Errorf("%w: %d results for %d inputs", ErrInvariantViolation, len(results), len(inputs))
	}
	for i, r := range results {
		if r.ScenarioID != inputs[i].Scenario.ID {
			return fmt.Errorf("%w: result %d is %s, input is %s", ErrInvariantViolation, i, r.ScenarioID, inputs[i].Scenario.ID)
		}
	}
	return nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
