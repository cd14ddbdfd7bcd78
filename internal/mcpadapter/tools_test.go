package mcpadapter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvaluator struct {
	err   error
	calls int
	seen  []models.EvaluationInput
}

func (s *stubEvaluator) Evaluate(_ context.Context, inputs []models.EvaluationInput) (*models.EvaluationArtifact, error) {
	s.calls++
	s.seen = inputs
	if s.err != nil {
		return nil, s.err
	}
	return &models.EvaluationArtifact{
		RunID:   "run-1",
		Metrics: models.EvalMetrics{TotalScenarios: len(inputs)},
	}, nil
}

func (s *stubEvaluator) EvaluateScenario(_ context.Context, in models.EvaluationInput) (models.EvaluationResult, error) {
	s.calls++
	s.seen = []models.EvaluationInput{in}
	if s.err != nil {
		return models.EvaluationResult{}, s.err
	}
	return models.EvaluationResult{ScenarioID: in.Scenario.ID, Correct: true}, nil
}

func scenario(id string) models.Scenario {
	return models.Scenario{
		ID:                id,
		ComponentRef:      "skill:review",
		ComponentType:     models.ComponentSkill,
		ScenarioType:      models.ScenarioNegative,
		UserPrompt:        "what time is it",
		ExpectedComponent: "review",
	}
}

func TestEvaluateScenarioHandler(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("evaluates", func(t *testing.T) {
		eval := &stubEvaluator{}
		handler := NewEvaluateScenarioHandler(eval, &logger)

		_, result, err := handler(context.Background(), nil, EvaluateScenarioInput{Scenario: scenario("neg-1")})
		require.NoError(t, err)
		assert.Equal(t, "neg-1", result.ScenarioID)
		assert.Equal(t, "neg-1", eval.seen[0].Execution.ScenarioID)
	})

	t.Run("rejects invalid scenario", func(t *testing.T) {
		eval := &stubEvaluator{}
		handler := NewEvaluateScenarioHandler(eval, &logger)

		bad := scenario("neg-1")
		bad.ComponentType = "plugin"
		_, _, err := handler(context.Background(), nil, EvaluateScenarioInput{Scenario: bad})
		require.Error(t, err)
		assert.Zero(t, eval.calls)
	})

	t.Run("propagates evaluator error", func(t *testing.T) {
		boom := errors.New("boom")
		handler := NewEvaluateScenarioHandler(&stubEvaluator{err: boom}, &logger)

		_, _, err := handler(context.Background(), nil, EvaluateScenarioInput{Scenario: scenario("neg-1")})
		assert.ErrorIs(t, err, boom)
	})
}

func TestEvaluateSuiteHandler(t *testing.T) {
	logger := zerolog.Nop()
	eval := &stubEvaluator{}
	handler := NewEvaluateSuiteHandler(eval, &logger)

	_, artifact, err := handler(context.Background(), nil, EvaluateSuiteInput{
		PluginName: "reviewer",
		Inputs: []models.EvaluationInput{
			{Scenario: scenario("a")},
			{Scenario: scenario("b")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", artifact.PluginName)
	assert.Equal(t, 2, artifact.Metrics.TotalScenarios)

	_, _, err = handler(context.Background(), nil, EvaluateSuiteInput{})
	assert.Error(t, err)
}

func TestEvaluateFileHandler(t *testing.T) {
	logger := zerolog.Nop()
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.jsonl")
	content := `{"scenario":{"id":"a","component_type":"skill","scenario_type":"direct","expected_trigger":true,"expected_component":"review"},"execution":{}}
not json
{"scenario":{"id":"b","component_type":"agent","scenario_type":"negative","expected_component":"planner"},"execution":{"scenario_id":"b"}}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	eval := &stubEvaluator{}
	handler := NewEvaluateFileHandler(eval, &logger)

	_, artifact, err := handler(context.Background(), nil, EvaluateFileInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 2, artifact.Metrics.TotalScenarios)
	require.Len(t, eval.seen, 2)
	assert.Equal(t, "a", eval.seen[0].Execution.ScenarioID)

	_, _, err = handler(context.Background(), nil, EvaluateFileInput{Path: filepath.Join(dir, "missing.jsonl")})
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	logger := zerolog.Nop()
	assert.NotNil(t, NewServer(&stubEvaluator{}, "test", &logger))
}
