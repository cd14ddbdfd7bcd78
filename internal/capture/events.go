package capture

import "time"

type ToolStartEvent struct {
	ToolName  string         `json:"tool_name"`
	Input     map[string]any `json:"tool_input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type ToolFinishEvent struct {
	ToolUseID string    `json:"tool_use_id"`
	Response  any       `json:"tool_response,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ToolFailureEvent struct {
	ToolUseID   string    `json:"tool_use_id"`
	Error       string    `json:"error"`
	IsInterrupt bool      `json:"is_interrupt,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type SubagentStartEvent struct {
	AgentID         string    `json:"agent_id"`
	AgentType       string    `json:"agent_type"`
	ParentToolUseID string    `json:"parent_tool_use_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

type SubagentStopEvent struct {
	AgentID        string    `json:"agent_id"`
	TranscriptPath string    `json:"agent_transcript_path,omitempty"`
	StopHookActive bool      `json:"stop_hook_active,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type HookResponseEvent struct {
	HookName  string    `json:"hook_name"`
	HookEvent string    `json:"hook_event"`
	HookID    string    `json:"hook_id,omitempty"`
	Stdout    string    `json:"stdout,omitempty"`
	Stderr    string    `json:"stderr,omitempty"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ProgressEvent struct {
	ToolUseID      string  `json:"tool_use_id"`
	ElapsedSeconds float64 `json:"elapsed_time_seconds"`
}

// SummaryEvent describes one or more preceding tool calls.
type SummaryEvent struct {
	ToolUseIDs []string `json:"preceding_tool_use_ids"`
	Summary    string   `json:"summary"`
}

// Handlers is the callback set a runtime invokes during one session.
// Every handler returns without blocking on I/O.
type Handlers struct {
	ToolStart     func(ToolStartEvent)
	ToolFinish    func(ToolFinishEvent)
	ToolFailure   func(ToolFailureEvent)
	SubagentStart func(SubagentStartEvent)
	SubagentStop  func(SubagentStopEvent)
	HookResponse  func(HookResponseEvent)
	Progress      func(ProgressEvent)
	Summary       func(SummaryEvent)
}

// Registrar is implemented by agent runtimes that accept lifecycle callbacks.
type Registrar interface {
	Register(handlers Handlers)
}
