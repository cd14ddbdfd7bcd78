package capture

import (
	"sync"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

// Collector correlates lifecycle events of one scenario session into captures.
//
// Records live in ordered slices owned by the collector; the pending maps only
// hold indexes into those slices, keyed by correlation id or agent id. Several
// tool calls may be in flight at once, so nothing assumes a single pending slot.
type Collector struct {
	mu sync.Mutex

	tools        []models.Capture
	pendingTools map[string]int
	toolIndex    map[string]int

	subagents     []models.SubagentCapture
	pendingAgents map[string]int

	hooks []models.HookResponseCapture

	dropped int
	now     func() time.Time
	logger  *zerolog.Logger
}

func NewCollector(logger *zerolog.Logger) *Collector {
	return &Collector{
		pendingTools:  make(map[string]int),
		toolIndex:     make(map[string]int),
		pendingAgents: make(map[string]int),
		now:           time.Now,
		logger:        logger,
	}
}

// Attach registers the collector's handlers with a runtime.
func (c *Collector) Attach(r Registrar) {
	r.Register(c.Handlers())
}

func (c *Collector) Handlers() Handlers {
	return Handlers{
		ToolStart:     c.OnToolStart,
		ToolFinish:    c.OnToolFinish,
		ToolFailure:   c.OnToolFailure,
		SubagentStart: c.OnSubagentStart,
		SubagentStop:  c.OnSubagentStop,
		HookResponse:  c.OnHookResponse,
		Progress:      c.OnProgress,
		Summary:       c.OnSummary,
	}
}

func (c *Collector) OnToolStart(ev ToolStartEvent) {
	if ev.ToolName == "" {
		c.drop("tool start without name")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, inFlight := c.pendingTools[ev.ToolUseID]; inFlight && ev.ToolUseID != "" {
		c.dropLocked("tool start reuses an in-flight tool_use_id")
		return
	}

	c.tools = append(c.tools, models.Capture{
		Name:          ev.ToolName,
		Input:         ev.Input,
		CorrelationID: ev.ToolUseID,
		StartedAt:     c.stamp(ev.Timestamp),
	})
	idx := len(c.tools) - 1

	if ev.ToolUseID == "" {
		return
	}
	// An id reused after completion addresses the newer record.
	c.pendingTools[ev.ToolUseID] = idx
	c.toolIndex[ev.ToolUseID] = idx
}

func (c *Collector) OnToolFinish(ev ToolFinishEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.takePendingTool(ev.ToolUseID)
	if !ok {
		c.dropLocked("tool finish without matching start")
		return
	}

	success := true
	finished := c.stamp(ev.Timestamp)
	rec := &c.tools[idx]
	rec.Result = ev.Response
	rec.Success = &success
	rec.FinishedAt = &finished
}

func (c *Collector) OnToolFailure(ev ToolFailureEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.takePendingTool(ev.ToolUseID)
	if !ok {
		c.dropLocked("tool failure without matching start")
		return
	}

	success := false
	finished := c.stamp(ev.Timestamp)
	rec := &c.tools[idx]
	rec.Error = ev.Error
	rec.Interrupted = ev.IsInterrupt
	rec.Success = &success
	rec.FinishedAt = &finished
}

func (c *Collector) OnSubagentStart(ev SubagentStartEvent) {
	if ev.AgentID == "" {
		c.drop("subagent start without agent id")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, running := c.pendingAgents[ev.AgentID]; running {
		c.dropLocked("subagent start reuses a running agent id")
		return
	}

	c.subagents = append(c.subagents, models.SubagentCapture{
		AgentID:             ev.AgentID,
		AgentType:           ev.AgentType,
		StartedAt:           c.stamp(ev.Timestamp),
		ParentCorrelationID: ev.ParentToolUseID,
	})
	c.pendingAgents[ev.AgentID] = len(c.subagents) - 1
}

func (c *Collector) OnSubagentStop(ev SubagentStopEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.pendingAgents[ev.AgentID]
	if !ok {
		c.dropLocked("subagent stop without matching start")
		return
	}
	delete(c.pendingAgents, ev.AgentID)

	stopped := c.stamp(ev.Timestamp)
	rec := &c.subagents[idx]
	rec.StoppedAt = &stopped
	rec.TranscriptPath = ev.TranscriptPath
	rec.StopHookActive = ev.StopHookActive
}

func (c *Collector) OnHookResponse(ev HookResponseEvent) {
	if ev.HookName == "" && ev.HookEvent == "" {
		c.drop("hook response without name or event")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.hooks = append(c.hooks, models.HookResponseCapture{
		HookName:  ev.HookName,
		HookEvent: ev.HookEvent,
		HookID:    ev.HookID,
		Stdout:    ev.Stdout,
		Stderr:    ev.Stderr,
		ExitCode:  ev.ExitCode,
		Outcome:   ev.Outcome,
		Timestamp: c.stamp(ev.Timestamp),
	})
}

func (c *Collector) OnProgress(ev ProgressEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.toolIndex[ev.ToolUseID]
	if !ok || ev.ToolUseID == "" {
		c.dropLocked("progress for unknown tool call")
		return
	}
	c.tools[idx].ElapsedSecs = ev.ElapsedSeconds
}

func (c *Collector) OnSummary(ev SummaryEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ev.ToolUseIDs {
		idx, ok := c.toolIndex[id]
		if !ok || id == "" {
			c.dropLocked("summary for unknown tool call")
			continue
		}
		c.tools[idx].Summary = ev.Summary
	}
}

// Snapshot returns copies of everything captured so far.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Tools:     make([]models.Capture, len(c.tools)),
		Subagents: make([]models.SubagentCapture, len(c.subagents)),
		Hooks:     make([]models.HookResponseCapture, len(c.hooks)),
		Pending:   len(c.pendingTools),
		Dropped:   c.dropped,
	}
	copy(snap.Tools, c.tools)
	copy(snap.Subagents, c.subagents)
	copy(snap.Hooks, c.hooks)
	return snap
}

// Snapshot is an immutable view of one session's captures.
type Snapshot struct {
	Tools     []models.Capture
	Subagents []models.SubagentCapture
	Hooks     []models.HookResponseCapture
	Pending   int
	Dropped   int
}

// Record fills the capture fields of an execution record.
func (s Snapshot) Record(scenarioID string) models.ExecutionRecord {
	return models.ExecutionRecord{
		ScenarioID:       scenarioID,
		DetectedTools:    s.Tools,
		HookResponses:    s.Hooks,
		SubagentCaptures: s.Subagents,
	}
}

// takePendingTool removes and returns the pending index for id. The removal
// makes the first completion win.
func (c *Collector) takePendingTool(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	idx, ok := c.pendingTools[id]
	if !ok {
		return 0, false
	}
	delete(c.pendingTools, id)
	return idx, true
}

func (c *Collector) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return c.now()
	}
	return ts
}

func (c *Collector) drop(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked(reason)
}

func (c *Collector) dropLocked(reason string) {
	c.dropped++
	c.logger.Debug().Str("reason", reason).Msg("capture event dropped")
}
