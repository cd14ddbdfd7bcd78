package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/judge"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
	"github.com/rs/zerolog"
)

var ErrBatchTimeout = errors.New("batch job timed out")

type ManagerConfig struct {
	NumSamples   int
	PollInterval time.Duration
	Timeout      time.Duration
}

// Report describes a finished batch job.
type Report struct {
	JobID    string
	State    State
	History  []State
	Counts   llm.BatchCounts
	Missing  int
	CostUSD  float64
	Duration time.Duration
}

// Manager runs judgment jobs through a provider batch API.
type Manager struct {
	client llm.BatchClient
	rubric *judge.Rubric
	prices *pricing.Table
	clock  Clock
	cfg    ManagerConfig
	logger *zerolog.Logger
}

func NewManager(client llm.BatchClient, rubric *judge.Rubric, prices *pricing.Table, clock Clock, cfg ManagerConfig, logger *zerolog.Logger) *Manager {
	if cfg.NumSamples < 1 {
		cfg.NumSamples = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Hour
	}
	if clock == nil {
		clock = RealClock()
	}
	if prices == nil {
		prices = pricing.Default()
	}
	return &Manager{
		client: client,
		rubric: rubric,
		prices: prices,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

func (m *Manager) NumSamples() int {
	return m.cfg.NumSamples
}

type slot struct {
	job    int
	sample int
}

// Run judges every job N times in one batch. A timeout or provider failure
// fails the whole batch; missing per-request results become error samples.
// Concurrent calls on one Manager are independent.
func (m *Manager) Run(ctx context.Context, jobs []judge.Job) (map[string]models.MultiSampleResult, *Report, error) {
	started := m.clock.Now()
	r := newRun(m.logger)
	report := &Report{}

	requests, slots, err := m.collect(jobs)
	if err != nil {
		r.move(EventFailed)
		return nil, r.finish(report, m.clock.Now().Sub(started)), err
	}

	jobID, err := m.client.Submit(ctx, requests)
	if err != nil {
		r.move(EventFailed)
		return nil, r.finish(report, m.clock.Now().Sub(started)), fmt.Errorf("failed to submit batch: %w", err)
	}
	report.JobID = jobID
	r.move(EventSubmitted)

	m.logger.Info().
		Str("job_id", jobID).
		Int("requests", len(requests)).
		Int("jobs", len(jobs)).
		Msg("batch submitted")

	counts, err := m.poll(ctx, r, jobID, started)
	report.Counts = counts
	if err != nil {
		return nil, r.finish(report, m.clock.Now().Sub(started)), err
	}

	fetched, err := m.client.FetchResults(ctx, jobID)
	if err != nil {
		r.move(EventFetchFailed)
		return nil, r.finish(report, m.clock.Now().Sub(started)), fmt.Errorf("failed to fetch batch results: %w", err)
	}

	samples := make([][]models.JudgeResponse, len(jobs))
	for i := range samples {
		samples[i] = make([]models.JudgeResponse, m.cfg.NumSamples)
	}

	model := m.rubric.Model()
	for id, s := range slots {
		result, ok := fetched[id]
		if !ok {
			report.Missing++
			samples[s.job][s.sample] = judge.ErrorResponse(models.JudgeErrorMissing, fmt.Errorf("no result for %s", id))
			continue
		}
		resp := m.toResponse(result, model)
		report.CostUSD += resp.CostUSD
		samples[s.job][s.sample] = resp
	}

	results := make(map[string]models.MultiSampleResult, len(jobs))
	for i, job := range jobs {
		results[job.Key] = judge.Aggregate(samples[i])
	}

	if report.Missing > 0 {
		m.logger.Warn().
			Str("job_id", jobID).
			Int("missing", report.Missing).
			Msg("batch results missing, synthesized error samples")
	}

	r.finish(report, m.clock.Now().Sub(started))
	m.logger.Info().
		Str("job_id", jobID).
		Int("succeeded", counts.Succeeded).
		Int("errored", counts.Errored).
		Float64("cost_usd", report.CostUSD).
		Dur("duration", report.Duration).
		Msg("batch completed")

	return results, report, nil
}

func (m *Manager) collect(jobs []judge.Job) ([]llm.BatchRequest, map[string]slot, error) {
	requests := make([]llm.BatchRequest, 0, len(jobs)*m.cfg.NumSamples)
	slots := make(map[string]slot, cap(requests))
	taken := make(map[string]bool, cap(requests))

	for i, job := range jobs {
		completion, err := m.rubric.Render(job.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to render prompt for %s: %w", job.Key, err)
		}
		for s := 0; s < m.cfg.NumSamples; s++ {
			id := uniqueID(job.Key, s, i, taken)
			taken[id] = true
			slots[id] = slot{job: i, sample: s}
			requests = append(requests, llm.BatchRequest{CustomID: id, Request: completion})
		}
	}
	if len(requests) == 0 {
		return nil, nil, fmt.Errorf("batch has no requests")
	}
	return requests, slots, nil
}

func (m *Manager) poll(ctx context.Context, r *run, jobID string, started time.Time) (llm.BatchCounts, error) {
	deadline := started.Add(m.cfg.Timeout)

	for {
		counts, err := m.client.PollStatus(ctx, jobID)
		if err != nil {
			r.move(EventFailed)
			return counts, fmt.Errorf("failed to poll batch %s: %w", jobID, err)
		}

		if counts.Done() {
			r.move(EventDrained)
			return counts, nil
		}
		r.move(EventPolled)

		m.logger.Debug().
			Str("job_id", jobID).
			Int("processing", counts.Processing).
			Int("succeeded", counts.Succeeded).
			Int("errored", counts.Errored).
			Int("canceled", counts.Canceled).
			Int("expired", counts.Expired).
			Msg("batch in progress")

		if !m.clock.Now().Before(deadline) {
			r.move(EventDeadline)
			return counts, fmt.Errorf("%w: %s still processing %d requests after %s", ErrBatchTimeout, jobID, counts.Processing, m.cfg.Timeout)
		}

		select {
		case <-ctx.Done():
			r.move(EventFailed)
			return counts, ctx.Err()
		case <-m.clock.After(m.cfg.PollInterval):
		}
	}
}

func (m *Manager) toResponse(result llm.BatchResult, model string) models.JudgeResponse {
	if result.Error != "" || result.Response == nil {
		msg := result.Error
		if msg == "" {
			msg = "empty batch response"
		}
		return judge.ErrorResponse(models.JudgeErrorCall, errors.New(msg))
	}

	if result.Response.Model != "" {
		model = result.Response.Model
	}
	cost := m.prices.BatchCost(model, result.Response.Usage)

	resp, err := judge.ParseResponse(result.Response.Text)
	if err != nil {
		resp = judge.ErrorResponse(models.JudgeErrorCall, err)
	}
	resp.CostUSD = cost
	return resp
}

// run holds the state of a single Run call.
type run struct {
	state   State
	history []State
	logger  *zerolog.Logger
}

func newRun(logger *zerolog.Logger) *run {
	return &run{state: StateCollecting, history: []State{StateCollecting}, logger: logger}
}

func (r *run) move(e Event) {
	next, err := Transition(r.state, e)
	if err != nil {
		r.logger.Error().Err(err).Msg("batch state machine violated")
		return
	}
	if r.history[len(r.history)-1] != next {
		r.history = append(r.history, next)
	}
	r.state = next
}

func (r *run) finish(report *Report, elapsed time.Duration) *Report {
	report.State = r.state
	report.History = append([]State(nil), r.history...)
	report.Duration = elapsed
	return report
}
