package judge

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Job is one scenario run awaiting judgment.
type Job struct {
	Key  string
	Data PromptData
}

type DispatcherConfig struct {
	NumSamples  int
	Concurrency int
	CallTimeout time.Duration
	// RatePerSecond of zero disables rate limiting.
	RatePerSecond float64
}

// SyncDispatcher issues every (job, sample) call concurrently, bounded by
// Concurrency, and aggregates the samples per job.
type SyncDispatcher struct {
	judge   Judge
	cfg     DispatcherConfig
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func NewSyncDispatcher(judge Judge, cfg DispatcherConfig, logger *zerolog.Logger) *SyncDispatcher {
	if cfg.NumSamples < 1 {
		cfg.NumSamples = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Concurrency)
	}

	return &SyncDispatcher{
		judge:   judge,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger,
	}
}

func (d *SyncDispatcher) NumSamples() int {
	return d.cfg.NumSamples
}

// Run never fails as a whole: each failed call becomes an error sample.
func (d *SyncDispatcher) Run(ctx context.Context, jobs []Job) map[string]models.MultiSampleResult {
	samples := make([][]models.JudgeResponse, len(jobs))
	for i := range samples {
		samples[i] = make([]models.JudgeResponse, d.cfg.NumSamples)
	}

	g := new(errgroup.Group)
	g.SetLimit(d.cfg.Concurrency)

	for i, job := range jobs {
		for s := 0; s < d.cfg.NumSamples; s++ {
			g.Go(func() error {
				samples[i][s] = d.sample(ctx, job)
				return nil
			})
		}
	}
	_ = g.Wait()

	results := make(map[string]models.MultiSampleResult, len(jobs))
	for i, job := range jobs {
		result := Aggregate(samples[i])
		if result.ErrorCount > 0 {
			d.logger.Warn().
				Str("key", job.Key).
				Int("errors", result.ErrorCount).
				Int("samples", d.cfg.NumSamples).
				Msg("judge samples degraded")
		}
		results[job.Key] = result
	}

	d.logger.Info().
		Int("jobs", len(jobs)).
		Int("calls", len(jobs)*d.cfg.NumSamples).
		Msg("synchronous judgment complete")

	return results
}

func (d *SyncDispatcher) sample(ctx context.Context, job Job) models.JudgeResponse {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return ErrorResponse(models.JudgeErrorCall, fmt.Errorf("rate limiter: %w", err))
		}
	}

	callCtx := ctx
	if d.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, d.cfg.CallTimeout)
		defer cancel()
	}

	return d.judge.Evaluate(callCtx, job.Data)
}
