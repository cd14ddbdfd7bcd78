package telemetry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ScenarioEvaluated(t *testing.T) {
	m := NewMetrics()
	quality := 8.0

	m.ScenarioEvaluated(models.EvaluationResult{
		ComponentType:    models.ComponentSkill,
		Correct:          true,
		QualityScore:     &quality,
		ConflictSeverity: models.SeverityMinor,
		JudgeErrors:      []models.JudgeErrorKind{models.JudgeErrorTimeout},
		JudgmentCostUSD:  0.25,
	})
	m.ScenarioEvaluated(models.EvaluationResult{ComponentType: models.ComponentSkill})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.scenarios.WithLabelValues("skill", "correct", "minor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scenarios.WithLabelValues("skill", "incorrect", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.judgeErrors.WithLabelValues("judge_timeout")))
	assert.InDelta(t, 0.25, testutil.ToFloat64(m.judgmentCost), 1e-9)
}

func TestMetrics_DispatchAndBatch(t *testing.T) {
	m := NewMetrics()

	m.JudgmentDispatched("sync", 6)
	m.JudgmentDispatched("sync", 3)
	m.BatchFinished(&batch.Report{State: batch.StateCompleted, Duration: time.Minute}, nil)
	m.BatchFinished(nil, errors.New("submit failed"))

	assert.Equal(t, 9.0, testutil.ToFloat64(m.judgeCalls.WithLabelValues("sync")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches.WithLabelValues("failed")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.JudgmentDispatched("batch", 4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `trigger_eval_judge_calls_total{path="batch"} 4`)
}
