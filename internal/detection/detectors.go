package detection

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

// ToolRule declares a tool whose invocation means a component fired, and the
// JSONPath of the input field that names the component.
type ToolRule struct {
	Tool          string               `yaml:"tool" validate:"required"`
	ComponentType models.ComponentType `yaml:"component_type" validate:"required"`
	IdentityPath  string               `yaml:"identity_path" validate:"required"`
}

func DefaultToolRules() []ToolRule {
	return []ToolRule{
		{Tool: "Skill", ComponentType: models.ComponentSkill, IdentityPath: "$.skill"},
		{Tool: "SlashCommand", ComponentType: models.ComponentCommand, IdentityPath: "$.command"},
		{Tool: "Task", ComponentType: models.ComponentAgent, IdentityPath: "$.subagent_type"},
		{Tool: "Agent", ComponentType: models.ComponentAgent, IdentityPath: "$.subagent_type"},
	}
}

type compiledRule struct {
	componentType models.ComponentType
	identity      jp.Expr
	path          string
}

// StandardDetector recognises skills, commands, agent invocations and
// tool-server calls from tool captures.
type StandardDetector struct {
	rules map[string]compiledRule
}

func NewStandardDetector(rules []ToolRule) (*StandardDetector, error) {
	compiled := make(map[string]compiledRule, len(rules))
	for _, r := range rules {
		expr, err := jp.ParseString(r.IdentityPath)
		if err != nil {
			return nil, fmt.Errorf("invalid identity path %q for tool %s: %w", r.IdentityPath, r.Tool, err)
		}
		compiled[r.Tool] = compiledRule{
			componentType: r.ComponentType,
			identity:      expr,
			path:          r.IdentityPath,
		}
	}
	return &StandardDetector{rules: compiled}, nil
}

func (d *StandardDetector) Name() string {
	return "standard"
}

func (d *StandardDetector) Detect(in Input) []models.Detection {
	var detections []models.Detection
	for _, capture := range in.Record.DetectedTools {
		if rule, ok := d.rules[capture.Name]; ok {
			name := extractIdentity(rule.identity, capture.Input)
			if name == "" {
				continue
			}
			name = normalizeIdentity(rule.componentType, name)
			detections = append(detections, models.Detection{
				ComponentType: rule.componentType,
				ComponentName: name,
				Confidence:    fullConfidence,
				Evidence:      fmt.Sprintf("%s tool invoked with %s=%q%s", capture.Name, rule.path, name, outcomeSuffix(capture)),
				Source:        "tool_capture",
				Timestamp:     capture.StartedAt,
			})
			continue
		}

		if server, tool, ok := ParseServerTool(capture.Name); ok {
			detections = append(detections, models.Detection{
				ComponentType: models.ComponentMCPServer,
				ComponentName: server,
				Confidence:    fullConfidence,
				Evidence:      fmt.Sprintf("tool-server call %s (server %q, tool %q)%s", capture.Name, server, tool, outcomeSuffix(capture)),
				Source:        "tool_capture",
				Timestamp:     capture.StartedAt,
			})
		}
	}
	return detections
}

func extractIdentity(expr jp.Expr, input map[string]any) string {
	if input == nil {
		return ""
	}
	for _, v := range expr.Get(input) {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func outcomeSuffix(c models.Capture) string {
	switch {
	case c.Success == nil:
		return ""
	case c.Interrupted:
		return " (interrupted)"
	case !*c.Success:
		return fmt.Sprintf(" (failed: %s)", c.Error)
	default:
		return ""
	}
}

// HookDetector fires when a hook response matches the scenario's hook id.
type HookDetector struct{}

func NewHookDetector() *HookDetector {
	return &HookDetector{}
}

func (d *HookDetector) Name() string {
	return "hook"
}

func (d *HookDetector) Detect(in Input) []models.Detection {
	if in.Scenario.ComponentType != models.ComponentHook {
		return nil
	}
	hookID := in.Scenario.ExpectedComponent
	var detections []models.Detection
	for _, h := range in.Record.HookResponses {
		if !MatchHook(h, hookID) {
			continue
		}
		detections = append(detections, models.Detection{
			ComponentType: models.ComponentHook,
			ComponentName: hookID,
			Confidence:    fullConfidence,
			Evidence:      fmt.Sprintf("hook response %s on %s (outcome %s)", h.HookName, h.HookEvent, orUnknown(h.Outcome)),
			Source:        "hook_response",
			Timestamp:     h.Timestamp,
		})
	}
	return detections
}

// AgentDetector fires when a sub-agent of the expected type was spawned, with
// or without a visible invocation tool call.
type AgentDetector struct{}

func NewAgentDetector() *AgentDetector {
	return &AgentDetector{}
}

func (d *AgentDetector) Name() string {
	return "agent"
}

func (d *AgentDetector) Detect(in Input) []models.Detection {
	if in.Scenario.ComponentType != models.ComponentAgent {
		return nil
	}
	var detections []models.Detection
	for _, s := range in.Record.SubagentCaptures {
		if !SameComponent(s.AgentType, in.Scenario.ExpectedComponent) {
			continue
		}
		detections = append(detections, models.Detection{
			ComponentType: models.ComponentAgent,
			ComponentName: s.AgentType,
			Confidence:    fullConfidence,
			Evidence:      fmt.Sprintf("sub-agent %s spawned (type %s)", s.AgentID, s.AgentType),
			Source:        "subagent_capture",
			Timestamp:     s.StartedAt,
		})
	}
	return detections
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
