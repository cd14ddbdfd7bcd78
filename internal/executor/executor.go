package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/aggregator"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/detection"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/judge"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/strategy"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Detector runs deterministic detection for one scenario run
type Detector interface {
	Detect(scenario models.Scenario, record models.ExecutionRecord) detection.Result
}

// ConflictAnalyzer compares expected and triggered components
type ConflictAnalyzer interface {
	Analyze(expected string, expectedType models.ComponentType, unique []models.Detection) models.ConflictAnalysis
}

// SyncJudge judges jobs with concurrent provider calls
type SyncJudge interface {
	NumSamples() int
	Run(ctx context.Context, jobs []judge.Job) map[string]models.MultiSampleResult
}

// BatchJudge judges jobs through a provider batch job
type BatchJudge interface {
	NumSamples() int
	Run(ctx context.Context, jobs []judge.Job) (map[string]models.MultiSampleResult, *batch.Report, error)
}

// MetricsAggregator rolls evaluated runs up into suite metrics
type MetricsAggregator interface {
	Aggregate(entries []aggregator.Entry) models.EvalMetrics
}

// Observer receives pipeline events, typically for metrics exposition.
type Observer interface {
	ScenarioEvaluated(result models.EvaluationResult)
	JudgmentDispatched(path string, calls int)
	BatchFinished(report *batch.Report, err error)
}

type Config struct {
	PluginName      string
	DetectionMode   models.DetectionMode
	AggregateMethod string
	Model           string
	Concurrency     int
	// BatchThreshold of zero disables the batch path.
	BatchThreshold int
	ForceSync      bool
}

type Components struct {
	Detector   Detector
	Analyzer   ConflictAnalyzer
	Sync       SyncJudge
	Batch      BatchJudge
	Aggregator MetricsAggregator
	Observer   Observer
}

type Executor struct {
	detector   Detector
	analyzer   ConflictAnalyzer
	sync       SyncJudge
	batch      BatchJudge
	aggregator MetricsAggregator
	observer   Observer
	cfg        Config
	logger     *zerolog.Logger
}

func NewExecutor(components Components, cfg Config, logger *zerolog.Logger) *Executor {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.DetectionMode == "" {
		cfg.DetectionMode = models.DetectionProgrammaticFirst
	}
	observer := components.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	return &Executor{
		detector:   components.Detector,
		analyzer:   components.Analyzer,
		sync:       components.Sync,
		batch:      components.Batch,
		aggregator: components.Aggregator,
		observer:   observer,
		cfg:        cfg,
		logger:     logger,
	}
}

const (
	PathSync  = "sync"
	PathBatch = "batch"
)

// plan is the deterministic part of one scenario evaluation.
type plan struct {
	input     models.EvaluationInput
	detection detection.Result
	analysis  models.ConflictAnalysis
	decision  strategy.Decision
	key       string
}

// Evaluate runs the whole pipeline over the input runs and produces the
// artifact. Judge failures degrade individual results; batch failures and
// invariant violations abort the run.
func (e *Executor) Evaluate(ctx context.Context, inputs []models.EvaluationInput) (*models.EvaluationArtifact, error) {
	return e.evaluate(ctx, inputs, e.cfg.ForceSync)
}

// EvaluateScenario judges a single run synchronously.
func (e *Executor) EvaluateScenario(ctx context.Context, input models.EvaluationInput) (models.EvaluationResult, error) {
	artifact, err := e.evaluate(ctx, []models.EvaluationInput{input}, true)
	if err != nil {
		return models.EvaluationResult{}, err
	}
	return artifact.Results[0], nil
}

func (e *Executor) evaluate(ctx context.Context, inputs []models.EvaluationInput, forceSync bool) (*models.EvaluationArtifact, error) {
	started := time.Now()
	e.logger.Info().
		Str("plugin", e.cfg.PluginName).
		Int("runs", len(inputs)).
		Str("detection_mode", string(e.cfg.DetectionMode)).
		Msg("starting evaluation")

	plans, err := e.plan(ctx, inputs)
	if err != nil {
		return nil, err
	}

	jobs := buildJobs(plans)
	judgments, usedBatch, err := e.dispatch(ctx, jobs, forceSync)
	if err != nil {
		return nil, err
	}
	samples := e.numSamples()
	if usedBatch {
		samples = e.batch.NumSamples()
	}
	if err := checkJudgments(jobs, judgments, samples); err != nil {
		return nil, err
	}

	results := make([]models.EvaluationResult, len(plans))
	entries := make([]aggregator.Entry, len(plans))
	for i, p := range plans {
		var judgment *models.MultiSampleResult
		if p.decision.NeedsJudge {
			j := judgments[p.key]
			judgment = &j
		}
		results[i] = BuildResult(p.input, p.detection, p.analysis, p.decision, judgment, e.cfg.DetectionMode)
		entries[i] = aggregator.Entry{
			Result:    results[i],
			Scenario:  p.input.Scenario,
			Execution: p.input.Execution,
		}
		e.observer.ScenarioEvaluated(results[i])
	}

	if err := checkResults(inputs, results); err != nil {
		return nil, err
	}

	metrics := e.aggregator.Aggregate(entries)
	artifact := &models.EvaluationArtifact{
		RunID:      uuid.NewString(),
		PluginName: e.cfg.PluginName,
		Timestamp:  time.Now().UTC(),
		Config: models.EvalConfigSnapshot{
			DetectionMode:   e.cfg.DetectionMode,
			NumSamples:      samples,
			AggregateMethod: e.cfg.AggregateMethod,
			Model:           e.cfg.Model,
			BatchThreshold:  e.cfg.BatchThreshold,
			ForceSync:       forceSync,
			UsedBatch:       usedBatch,
		},
		Cost: models.CostBreakdown{
			ExecutionUSD: metrics.ExecutionCostUSD,
			JudgmentUSD:  metrics.JudgmentCostUSD,
			TotalUSD:     metrics.TotalCostUSD,
		},
		Metrics: metrics,
		Results: results,
	}

	e.logger.Info().
		Str("run_id", artifact.RunID).
		Int("results", len(results)).
		Int("judged", len(jobs)).
		Bool("batch", usedBatch).
		Float64("accuracy", metrics.Accuracy).
		Dur("duration", time.Since(started)).
		Msg("evaluation complete")

	return artifact, nil
}

// plan runs detection, conflict analysis and strategy selection for every
// run under a bounded worker pool.
func (e *Executor) plan(ctx context.Context, inputs []models.EvaluationInput) ([]plan, error) {
	plans := make([]plan, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i] = e.planOne(in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
	return plans, nil
}

func (e *Executor) planOne(in models.EvaluationInput) plan {
	s := in.Scenario
	det := e.detector.Detect(s, in.Execution)
	analysis := e.analyzer.Analyze(s.ExpectedComponent, s.ComponentType, det.Unique)
	decision := strategy.Select(s.ScenarioType, s.ExpectedTrigger, det.Triggered, e.cfg.DetectionMode)

	e.logger.Debug().
		Str("scenario_id", s.ID).
		Bool("triggered", det.Triggered).
		Bool("conflict", analysis.HasConflict).
		Bool("needs_judge", decision.NeedsJudge).
		Str("reason", decision.Reason).
		Msg("scenario planned")

	return plan{
		input:     in,
		detection: det,
		analysis:  analysis,
		decision:  decision,
	}
}

func (e *Executor) numSamples() int {
	return e.sync.NumSamples()
}

// UseBatch reports whether the given job count goes through the batch path.
func (e *Executor) UseBatch(jobs int, forceSync bool) bool {
	if forceSync || e.cfg.BatchThreshold <= 0 {
		return false
	}
	return jobs*e.numSamples() >= e.cfg.BatchThreshold
}

func (e *Executor) dispatch(ctx context.Context, jobs []judge.Job, forceSync bool) (map[string]models.MultiSampleResult, bool, error) {
	if len(jobs) == 0 {
		return map[string]models.MultiSampleResult{}, false, nil
	}

	calls := len(jobs) * e.numSamples()
	if e.UseBatch(len(jobs), forceSync) {
		if e.batch != nil {
			e.observer.JudgmentDispatched(PathBatch, len(jobs)*e.batch.NumSamples())
			results, report, err := e.batch.Run(ctx, jobs)
			e.observer.BatchFinished(report, err)
			if err != nil {
				return nil, true, fmt.Errorf("batch judgment failed: %w", err)
			}
			return results, true, nil
		}
		e.logger.Warn().
			Int("calls", calls).
			Int("threshold", e.cfg.BatchThreshold).
			Msg("batch threshold reached but no batch backend configured, judging synchronously")
	}

	e.observer.JudgmentDispatched(PathSync, calls)
	return e.sync.Run(ctx, jobs), false, nil
}

type noopObserver struct{}

func (noopObserver) ScenarioEvaluated(models.EvaluationResult) {}
func (noopObserver) JudgmentDispatched(string, int)            {}
func (noopObserver) BatchFinished(*batch.Report, error)        {}
