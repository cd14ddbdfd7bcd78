package aggregator

import (
	"sort"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
	"github.com/rs/zerolog"
)

// HighVarianceThreshold flags multi-sample judgments whose score variance
// exceeds it.
const HighVarianceThreshold = 1.0

// Entry is one evaluated scenario run.
type Entry struct {
	Result    models.EvaluationResult
	Scenario  models.Scenario
	Execution models.ExecutionRecord
}

type Aggregator struct {
	prices *pricing.Table
	logger *zerolog.Logger
}

func NewAggregator(prices *pricing.Table, logger *zerolog.Logger) *Aggregator {
	if prices == nil {
		prices = pricing.Default()
	}
	return &Aggregator{
		prices: prices,
		logger: logger,
	}
}

func (a *Aggregator) Aggregate(entries []Entry) models.EvalMetrics {
	metrics := models.EvalMetrics{
		TotalScenarios: len(entries),
		ByComponent:    make(map[string]models.ComponentMetrics),
		ErrorsByType:   make(map[string]int),
	}

	overall := newQualityMean()
	correctCount := 0
	byComponent := make(map[models.ComponentType]*componentAcc)
	var componentOrder []models.ComponentType

	for _, e := range entries {
		r := e.Result
		correct := r.Triggered == r.ExpectedTrigger

		if r.Triggered {
			metrics.TriggeredCount++
		}
		if correct {
			correctCount++
		}
		overall.add(r.QualityScore)

		ct := r.ComponentType
		if ct == "" {
			ct = e.Scenario.ComponentType
		}
		acc, ok := byComponent[ct]
		if !ok {
			acc = &componentAcc{quality: newQualityMean()}
			byComponent[ct] = acc
			componentOrder = append(componentOrder, ct)
		}
		acc.add(r, correct)

		if r.HasConflict {
			metrics.ConflictCount++
			switch r.ConflictSeverity {
			case models.SeverityMajor:
				metrics.MajorConflicts++
			case models.SeverityMinor:
				metrics.MinorConflicts++
			}
		}

		metrics.ExecutionCostUSD += e.Execution.CostUSD
		metrics.TotalDurationMs += e.Execution.APIDurationMs
		metrics.JudgmentCostUSD += r.JudgmentCostUSD

		for _, execErr := range e.Execution.Errors {
			kind := execErr.Type
			if kind == "" {
				kind = "execution_error"
			}
			metrics.ErrorsByType[kind]++
			metrics.ErrorCount++
		}
		for _, kind := range r.JudgeErrors {
			metrics.ErrorsByType[string(kind)]++
			metrics.ErrorCount++
		}
	}

	if metrics.TotalScenarios > 0 {
		total := float64(metrics.TotalScenarios)
		metrics.TriggerRate = float64(metrics.TriggeredCount) / total
		metrics.Accuracy = float64(correctCount) / total
	}
	metrics.AvgQuality = overall.mean()
	metrics.TotalCostUSD = metrics.ExecutionCostUSD + metrics.JudgmentCostUSD

	for _, ct := range componentOrder {
		metrics.ByComponent[string(ct)] = byComponent[ct].metrics(ct)
	}

	metrics.MultiSample = multiSampleStats(entries)
	metrics.Semantic = semanticStats(entries)
	metrics.Repetition = repetitionStats(entries)
	metrics.Cache = a.cacheStats(entries)

	a.logger.Info().
		Int("scenarios", metrics.TotalScenarios).
		Float64("trigger_rate", metrics.TriggerRate).
		Float64("accuracy", metrics.Accuracy).
		Float64("avg_quality", metrics.AvgQuality).
		Int("conflicts", metrics.ConflictCount).
		Int("errors", metrics.ErrorCount).
		Float64("total_cost_usd", metrics.TotalCostUSD).
		Msg("aggregation complete")

	return metrics
}

// qualityMean skips nil and zero scores; zero means "not evaluated".
type qualityMean struct {
	sum   float64
	count int
}

func newQualityMean() *qualityMean {
	return &qualityMean{}
}

func (q *qualityMean) add(score *float64) {
	if score == nil || *score == 0 {
		return
	}
	q.sum += *score
	q.count++
}

func (q *qualityMean) mean() float64 {
	if q.count == 0 {
		return 0
	}
	return q.sum / float64(q.count)
}

type componentAcc struct {
	total, triggered, correct int
	falsePositives            int
	falseNegatives            int
	quality                   *qualityMean
}

func (c *componentAcc) add(r models.EvaluationResult, correct bool) {
	c.total++
	if r.Triggered {
		c.triggered++
	}
	if correct {
		c.correct++
	}
	if r.Triggered && !r.ExpectedTrigger {
		c.falsePositives++
	}
	if !r.Triggered && r.ExpectedTrigger {
		c.falseNegatives++
	}
	c.quality.add(r.QualityScore)
}

func (c *componentAcc) metrics(ct models.ComponentType) models.ComponentMetrics {
	m := models.ComponentMetrics{
		ComponentType:  ct,
		TotalScenarios: c.total,
		TriggeredCount: c.triggered,
		AvgQuality:     c.quality.mean(),
		FalsePositives: c.falsePositives,
		FalseNegatives: c.falseNegatives,
	}
	if c.total > 0 {
		m.TriggerRate = float64(c.triggered) / float64(c.total)
		m.Accuracy = float64(c.correct) / float64(c.total)
	}
	return m
}

func multiSampleStats(entries []Entry) *models.MultiSampleStats {
	stats := &models.MultiSampleStats{HighVarianceScenarios: []string{}}
	var varianceSum float64
	var unanimous int
	multi := false

	for _, e := range entries {
		j := e.Result.Judgment
		if j == nil {
			continue
		}
		n := len(j.IndividualScores)
		if n > 1 {
			multi = true
		}
		stats.SampleCount = max(stats.SampleCount, n)
		stats.JudgedScenarios++
		varianceSum += j.ScoreVariance
		if j.IsUnanimous {
			unanimous++
		}
		if j.ScoreVariance > HighVarianceThreshold {
			stats.HighVarianceScenarios = append(stats.HighVarianceScenarios, e.Result.ScenarioID)
		}
	}

	if !multi {
		return nil
	}
	stats.AvgScoreVariance = varianceSum / float64(stats.JudgedScenarios)
	stats.ConsensusRate = float64(unanimous) / float64(stats.JudgedScenarios)
	return stats
}

func semanticStats(entries []Entry) *models.SemanticStats {
	by := make(map[string]models.VariationStats)
	for _, e := range entries {
		variation := e.Scenario.SemanticVariationType
		if variation == "" {
			continue
		}
		s := by[variation]
		s.Total++
		if e.Result.Triggered == e.Result.ExpectedTrigger {
			s.Correct++
		}
		s.Accuracy = float64(s.Correct) / float64(s.Total)
		by[variation] = s
	}
	if len(by) == 0 {
		return nil
	}
	return &models.SemanticStats{ByVariation: by}
}

func repetitionStats(entries []Entry) *models.RepetitionStats {
	runs := make(map[string][]bool)
	var order []string
	for _, e := range entries {
		id := e.Result.ScenarioID
		if _, ok := runs[id]; !ok {
			order = append(order, id)
		}
		runs[id] = append(runs[id], e.Result.Triggered)
	}

	stats := &models.RepetitionStats{
		TotalScenarios:   len(order),
		FlakyScenarioIDs: []string{},
	}
	for _, id := range order {
		outcomes := runs[id]
		stats.Repetitions = max(stats.Repetitions, len(outcomes))
		if flaky(outcomes) {
			stats.FlakyScenarios++
			stats.FlakyScenarioIDs = append(stats.FlakyScenarioIDs, id)
		} else {
			stats.ConsistentScenarios++
		}
	}

	if stats.Repetitions < 2 {
		return nil
	}
	sort.Strings(stats.FlakyScenarioIDs)
	stats.ConsistencyRate = 1 - float64(stats.FlakyScenarios)/float64(stats.TotalScenarios)
	return stats
}

func flaky(outcomes []bool) bool {
	for _, o := range outcomes[1:] {
		if o != outcomes[0] {
			return true
		}
	}
	return false
}

func (a *Aggregator) cacheStats(entries []Entry) *models.CacheStats {
	stats := &models.CacheStats{}
	seen := false
	for _, e := range entries {
		u := e.Execution.Usage
		if u == nil {
			continue
		}
		seen = true
		stats.TotalInputTokens += u.TotalInput()
		stats.CacheReadTokens += u.CacheReadInputTokens
		stats.CacheCreationTokens += u.CacheCreationInputTokens
		if p, ok := a.prices.Lookup(e.Execution.Model); ok {
			stats.EstimatedSavingsUSD += p.CacheSavings(u.CacheReadInputTokens)
		}
	}
	if !seen {
		return nil
	}
	if stats.TotalInputTokens > 0 {
		stats.HitRate = float64(stats.CacheReadTokens) / float64(stats.TotalInputTokens)
	}
	return stats
}
