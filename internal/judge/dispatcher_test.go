package judge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedJudge returns scores from a per-scenario script and records
// peak concurrency.
type scriptedJudge struct {
	mu       sync.Mutex
	calls    map[string]int
	scores   map[string][]float64
	delay    time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (j *scriptedJudge) Evaluate(ctx context.Context, data PromptData) models.JudgeResponse {
	n := j.inFlight.Add(1)
	defer j.inFlight.Add(-1)
	for {
		p := j.peak.Load()
		if n <= p || j.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return ErrorResponse(models.JudgeErrorTimeout, fmt.Errorf("%w: %v", ErrJudgeTimeout, ctx.Err()))
		}
	}

	j.mu.Lock()
	idx := j.calls[data.ScenarioID]
	j.calls[data.ScenarioID]++
	j.mu.Unlock()

	script := j.scores[data.ScenarioID]
	if idx >= len(script) || script[idx] < 0 {
		return ErrorResponse(models.JudgeErrorCall, fmt.Errorf("scripted failure"))
	}
	return sample(script[idx], models.AccuracyCorrect)
}

func newScriptedJudge(scores map[string][]float64) *scriptedJudge {
	return &scriptedJudge{calls: make(map[string]int), scores: scores}
}

func TestSyncDispatcher_RunsEverySample(t *testing.T) {
	logger := zerolog.Nop()
	judge := newScriptedJudge(map[string][]float64{
		"a": {8, 8, 8},
		"b": {5, -1, 5},
	})
	d := NewSyncDispatcher(judge, DispatcherConfig{NumSamples: 3, Concurrency: 2}, &logger)

	results := d.Run(context.Background(), []Job{
		{Key: "a", Data: PromptData{ScenarioID: "a"}},
		{Key: "b", Data: PromptData{ScenarioID: "b"}},
	})

	require.Len(t, results, 2)
	assert.Len(t, results["a"].IndividualScores, 3)
	assert.InDelta(t, 8.0, results["a"].AggregatedScore, 1e-9)

	b := results["b"]
	assert.Len(t, b.IndividualScores, 3, "failed samples still count")
	assert.Equal(t, 1, b.ErrorCount)
	assert.LessOrEqual(t, judge.peak.Load(), int32(2))
}

func TestSyncDispatcher_CallTimeout(t *testing.T) {
	logger := zerolog.Nop()
	judge := newScriptedJudge(map[string][]float64{"slow": {9}})
	judge.delay = 200 * time.Millisecond
	d := NewSyncDispatcher(judge, DispatcherConfig{NumSamples: 1, Concurrency: 1, CallTimeout: 10 * time.Millisecond}, &logger)

	results := d.Run(context.Background(), []Job{{Key: "slow", Data: PromptData{ScenarioID: "slow"}}})

	res := results["slow"]
	require.Len(t, res.IndividualScores, 1)
	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, models.JudgeErrorTimeout, res.RepresentativeResponse.ErrorKind)
}

func TestSyncDispatcher_RateLimited(t *testing.T) {
	logger := zerolog.Nop()
	judge := newScriptedJudge(map[string][]float64{"a": {1, 2, 3, 4}})
	d := NewSyncDispatcher(judge, DispatcherConfig{NumSamples: 4, Concurrency: 4, RatePerSecond: 1000}, &logger)

	results := d.Run(context.Background(), []Job{{Key: "a", Data: PromptData{ScenarioID: "a"}}})

	assert.Len(t, results["a"].IndividualScores, 4)
	assert.Zero(t, results["a"].ErrorCount)
}

func TestSyncDispatcher_CanceledContextDegrades(t *testing.T) {
	logger := zerolog.Nop()
	judge := newScriptedJudge(map[string][]float64{"a": {1}})
	d := NewSyncDispatcher(judge, DispatcherConfig{NumSamples: 2, Concurrency: 1, RatePerSecond: 0.001}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := d.Run(ctx, []Job{{Key: "a", Data: PromptData{ScenarioID: "a"}}})

	assert.Len(t, results["a"].IndividualScores, 2)
	assert.Equal(t, 2, results["a"].ErrorCount)
}

func TestNewSyncDispatcher_Defaults(t *testing.T) {
	logger := zerolog.Nop()
	d := NewSyncDispatcher(newScriptedJudge(nil), DispatcherConfig{}, &logger)
	assert.Equal(t, 1, d.NumSamples())
}
