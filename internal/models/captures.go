package models

import "time"

// Capture is the structured record of one observed tool invocation.
type Capture struct {
	Name          string         `json:"name"`
	Input         map[string]any `json:"input,omitempty"`
	CorrelationID string         `json:"correlation_id,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
	Result        any            `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
	Success       *bool          `json:"success,omitempty"`
	Interrupted   bool           `json:"interrupted,omitempty"`
	ElapsedSecs   float64        `json:"elapsed_seconds,omitempty"`
	Summary       string         `json:"summary,omitempty"`
}

// Completed reports whether a finish or failure event has been applied.
func (c *Capture) Completed() bool {
	return c.Success != nil
}

type SubagentCapture struct {
	AgentID             string     `json:"agent_id"`
	AgentType           string     `json:"agent_type"`
	StartedAt           time.Time  `json:"started_at"`
	StoppedAt           *time.Time `json:"stopped_at,omitempty"`
	TranscriptPath      string     `json:"transcript_path,omitempty"`
	StopHookActive      bool       `json:"stop_hook_active,omitempty"`
	ParentCorrelationID string     `json:"parent_correlation_id,omitempty"`
}

type HookResponseCapture struct {
	HookName  string    `json:"hook_name"`
	HookEvent string    `json:"hook_event"`
	HookID    string    `json:"hook_id,omitempty"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Detection is a deterministic finding that a component fired.
type Detection struct {
	ComponentType ComponentType `json:"component_type"`
	ComponentName string        `json:"component_name"`
	Confidence    int           `json:"confidence"`
	Evidence      string        `json:"evidence"`
	Source        string        `json:"source"`
	Timestamp     time.Time     `json:"timestamp"`
}

type ComponentRef struct {
	Type ComponentType `json:"type"`
	Name string        `json:"name"`
}

func (r ComponentRef) String() string {
	return string(r.Type) + ":" + r.Name
}

type Severity string

const (
	SeverityNone  Severity = "none"
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

type ConflictAnalysis struct {
	ExpectedComponent    string         `json:"expected_component"`
	ExpectedType         ComponentType  `json:"expected_type"`
	AllTriggered         []ComponentRef `json:"all_triggered_components"`
	HasConflict          bool           `json:"has_conflict"`
	Severity             Severity       `json:"conflict_severity"`
	Reason               string         `json:"conflict_reason"`
	UnexpectedComponents []ComponentRef `json:"unexpected_components,omitempty"`
}
