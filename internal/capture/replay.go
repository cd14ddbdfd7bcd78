package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

const (
	EventToolStart     = "tool_start"
	EventToolFinish    = "tool_finish"
	EventToolFailure   = "tool_failure"
	EventSubagentStart = "subagent_start"
	EventSubagentStop  = "subagent_stop"
	EventHookResponse  = "hook_response"
	EventProgress      = "progress"
	EventSummary       = "summary"
)

// RuntimeEvent is one line of a recorded runtime event log.
type RuntimeEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Replay feeds a JSONL event log through the handlers in order. Lines that do
// not decode, or carry an unknown type, are skipped. It returns the number of
// events delivered.
func Replay(r io.Reader, h Handlers) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	delivered := 0
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var ev RuntimeEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		if dispatch(ev, h) {
			delivered++
		}
	}
	if err := sc.Err(); err != nil {
		return delivered, err
	}
	return delivered, nil
}

func dispatch(ev RuntimeEvent, h Handlers) bool {
	switch ev.Type {
	case EventToolStart:
		return deliver(ev.Payload, h.ToolStart)
	case EventToolFinish:
		return deliver(ev.Payload, h.ToolFinish)
	case EventToolFailure:
		return deliver(ev.Payload, h.ToolFailure)
	case EventSubagentStart:
		return deliver(ev.Payload, h.SubagentStart)
	case EventSubagentStop:
		return deliver(ev.Payload, h.SubagentStop)
	case EventHookResponse:
		return deliver(ev.Payload, h.HookResponse)
	case EventProgress:
		return deliver(ev.Payload, h.Progress)
	case EventSummary:
		return deliver(ev.Payload, h.Summary)
	default:
		return false
	}
}

func deliver[T any](payload json.RawMessage, fn func(T)) bool {
	if fn == nil {
		return false
	}
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return false
	}
	fn(v)
	return true
}
