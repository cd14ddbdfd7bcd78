package models

import "time"

type TriggerAccuracy string

const (
	AccuracyCorrect   TriggerAccuracy = "correct"
	AccuracyIncorrect TriggerAccuracy = "incorrect"
	AccuracyPartial   TriggerAccuracy = "partial"
)

type HighlightPosition struct {
	Start int `json:"start" validate:"gte=0"`
	End   int `json:"end" validate:"gtefield=Start"`
}

// Highlight cites a passage of the transcript that supports the judgment.
type Highlight struct {
	Description string             `json:"description"`
	MessageID   string             `json:"message_id,omitempty"`
	QuotedText  string             `json:"quoted_text" validate:"required"`
	Position    *HighlightPosition `json:"position,omitempty" validate:"omitempty"`
}

// JudgeResponse is one LLM judgment. Error is set only on degraded samples.
type JudgeResponse struct {
	QualityScore      float64         `json:"quality_score" validate:"gte=0,lte=10"`
	ResponseRelevance float64         `json:"response_relevance" validate:"gte=0,lte=10"`
	TriggerAccuracy   TriggerAccuracy `json:"trigger_accuracy" validate:"oneof=correct incorrect partial"`
	Issues            []string        `json:"issues"`
	Highlights        []Highlight     `json:"highlights,omitempty" validate:"omitempty,dive"`
	Summary           string          `json:"summary"`
	Error             string          `json:"error,omitempty" validate:"-"`
	ErrorKind         JudgeErrorKind  `json:"error_kind,omitempty" validate:"-"`
	CostUSD           float64         `json:"cost_usd,omitempty" validate:"-"`
}

// IsError reports whether the response was synthesized from a failed call.
func (r JudgeResponse) IsError() bool {
	return r.Error != ""
}

type MultiSampleResult struct {
	IndividualScores         []float64        `json:"individual_scores"`
	AggregatedScore          float64          `json:"aggregated_score"`
	ScoreVariance            float64          `json:"score_variance"`
	ConsensusTriggerAccuracy TriggerAccuracy  `json:"consensus_trigger_accuracy"`
	ConsensusVotes           int              `json:"consensus_votes"`
	IsUnanimous              bool             `json:"is_unanimous"`
	AllIssues                []string         `json:"all_issues"`
	RepresentativeResponse   JudgeResponse    `json:"representative_response"`
	TotalCostUSD             float64          `json:"total_cost_usd"`
	ErrorCount               int              `json:"error_count,omitempty"`
	ErrorKinds               []JudgeErrorKind `json:"error_kinds,omitempty"`
}

// Final output unit, one per execution record.
type EvaluationResult struct {
	ScenarioID             string             `json:"scenario_id"`
	ComponentRef           string             `json:"component_ref,omitempty"`
	ComponentType          ComponentType      `json:"component_type,omitempty"`
	Repetition             int                `json:"repetition,omitempty"`
	Triggered              bool               `json:"triggered"`
	ExpectedTrigger        bool               `json:"expected_trigger"`
	Correct                bool               `json:"correct"`
	Confidence             int                `json:"confidence"`
	QualityScore           *float64           `json:"quality_score"`
	Evidence               []string           `json:"evidence"`
	Issues                 []string           `json:"issues"`
	Summary                string             `json:"summary,omitempty"`
	Highlights             []Highlight        `json:"highlights,omitempty"`
	DetectionSource        DetectionSource    `json:"detection_source"`
	AllTriggeredComponents []ComponentRef     `json:"all_triggered_components"`
	HasConflict            bool               `json:"has_conflict"`
	ConflictSeverity       Severity           `json:"conflict_severity"`
	ConflictReason         string             `json:"conflict_reason,omitempty"`
	Judgment               *MultiSampleResult `json:"judgment,omitempty"`
	JudgmentCostUSD        float64            `json:"judgment_cost_usd,omitempty"`
	JudgeErrors            []JudgeErrorKind   `json:"-"`
}

type JudgeErrorKind string

const (
	JudgeErrorCall    JudgeErrorKind = "judge_error"
	JudgeErrorTimeout JudgeErrorKind = "judge_timeout"
	JudgeErrorMissing JudgeErrorKind = "batch_missing_result"
)

type EvalConfigSnapshot struct {
	DetectionMode   DetectionMode `json:"detection_mode"`
	NumSamples      int           `json:"num_samples"`
	AggregateMethod string        `json:"aggregate_method"`
	Model           string        `json:"model"`
	BatchThreshold  int           `json:"batch_threshold"`
	ForceSync       bool          `json:"force_sync"`
	UsedBatch       bool          `json:"used_batch"`
}

type CostBreakdown struct {
	ExecutionUSD float64 `json:"execution_usd"`
	JudgmentUSD  float64 `json:"judgment_usd"`
	TotalUSD     float64 `json:"total_usd"`
}

// EvaluationArtifact is the persisted output of one suite evaluation.
type EvaluationArtifact struct {
	RunID      string             `json:"run_id"`
	PluginName string             `json:"plugin_name"`
	Timestamp  time.Time          `json:"timestamp"`
	Config     EvalConfigSnapshot `json:"config"`
	Cost       CostBreakdown      `json:"cost"`
	Metrics    EvalMetrics        `json:"metrics"`
	Results    []EvaluationResult `json:"results"`
}
