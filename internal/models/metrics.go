package models

type ComponentMetrics struct {
	ComponentType  ComponentType `json:"component_type"`
	TotalScenarios int           `json:"total_scenarios"`
	TriggeredCount int           `json:"triggered_count"`
	TriggerRate    float64       `json:"trigger_rate"`
	Accuracy       float64       `json:"accuracy"`
	AvgQuality     float64       `json:"avg_quality"`
	FalsePositives int           `json:"false_positives"`
	FalseNegatives int           `json:"false_negatives"`
}

type MultiSampleStats struct {
	SampleCount           int      `json:"sample_count"`
	JudgedScenarios       int      `json:"judged_scenarios"`
	AvgScoreVariance      float64  `json:"avg_score_variance"`
	ConsensusRate         float64  `json:"consensus_rate"`
	HighVarianceScenarios []string `json:"high_variance_scenarios"`
}

type VariationStats struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

type SemanticStats struct {
	ByVariation map[string]VariationStats `json:"by_variation"`
}

type RepetitionStats struct {
	Repetitions         int      `json:"repetitions"`
	TotalScenarios      int      `json:"total_scenarios"`
	ConsistentScenarios int      `json:"consistent_scenarios"`
	FlakyScenarios      int      `json:"flaky_scenarios"`
	FlakyScenarioIDs    []string `json:"flaky_scenario_ids"`
	ConsistencyRate     float64  `json:"consistency_rate"`
}

type CacheStats struct {
	TotalInputTokens    int     `json:"total_input_tokens"`
	CacheReadTokens     int     `json:"cache_read_tokens"`
	CacheCreationTokens int     `json:"cache_creation_tokens"`
	HitRate             float64 `json:"hit_rate"`
	EstimatedSavingsUSD float64 `json:"estimated_savings_usd"`
}

// EvalMetrics is the suite-wide rollup. Optional sections are nil when the
// underlying data is absent.
type EvalMetrics struct {
	TotalScenarios   int                         `json:"total_scenarios"`
	TriggeredCount   int                         `json:"triggered_count"`
	TriggerRate      float64                     `json:"trigger_rate"`
	Accuracy         float64                     `json:"accuracy"`
	AvgQuality       float64                     `json:"avg_quality"`
	ByComponent      map[string]ComponentMetrics `json:"by_component"`
	ConflictCount    int                         `json:"conflict_count"`
	MajorConflicts   int                         `json:"major_conflicts"`
	MinorConflicts   int                         `json:"minor_conflicts"`
	ExecutionCostUSD float64                     `json:"execution_cost_usd"`
	JudgmentCostUSD  float64                     `json:"judgment_cost_usd"`
	TotalCostUSD     float64                     `json:"total_cost_usd"`
	TotalDurationMs  int64                       `json:"total_duration_ms"`
	ErrorCount       int                         `json:"error_count"`
	ErrorsByType     map[string]int              `json:"errors_by_type"`
	MultiSample      *MultiSampleStats           `json:"multi_sample,omitempty"`
	Semantic         *SemanticStats              `json:"semantic,omitempty"`
	Repetition       *RepetitionStats            `json:"repetition,omitempty"`
	Cache            *CacheStats                 `json:"cache,omitempty"`
}
