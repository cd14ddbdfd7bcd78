package detection

import (
	"strings"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

const (
	serverSeparator = "__"
	mcpPrefix       = "mcp"
)

// SameComponent compares a detected identity against an expected name.
// Namespaced identities ("plugin:name") match their bare name.
func SameComponent(detected string, expected string) bool {
	detected = strings.TrimSpace(detected)
	expected = strings.TrimSpace(expected)
	if detected == "" || expected == "" {
		return false
	}
	if strings.EqualFold(detected, expected) {
		return true
	}
	return strings.EqualFold(bareName(detected), bareName(expected))
}

func bareName(name string) string {
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// ParseServerTool splits a tool-server capture name. Both "server__tool" and
// "mcp__server__tool" are accepted.
func ParseServerTool(name string) (server string, tool string, ok bool) {
	parts := strings.Split(name, serverSeparator)
	if len(parts) >= 3 && parts[0] == mcpPrefix {
		server, tool = parts[1], strings.Join(parts[2:], serverSeparator)
	} else if len(parts) >= 2 && parts[0] != mcpPrefix {
		server, tool = parts[0], strings.Join(parts[1:], serverSeparator)
	} else {
		return "", "", false
	}
	if server == "" || tool == "" {
		return "", "", false
	}
	return server, tool, true
}

func normalizeIdentity(componentType models.ComponentType, raw string) string {
	id := strings.TrimSpace(raw)
	if componentType == models.ComponentCommand {
		id = strings.TrimPrefix(id, "/")
		if fields := strings.Fields(id); len(fields) > 0 {
			id = fields[0]
		}
	}
	return id
}

// ParseHookID splits "<Event>::<Matcher>". A missing matcher matches any tool.
func ParseHookID(hookID string) (event string, matcher string) {
	event, matcher, found := strings.Cut(hookID, "::")
	if !found {
		return strings.TrimSpace(hookID), ""
	}
	return strings.TrimSpace(event), strings.TrimSpace(matcher)
}

// MatchHook matches a hook response against a declared hook id, first exactly
// and then by event plus matcher substring.
func MatchHook(h models.HookResponseCapture, hookID string) bool {
	event, matcher := ParseHookID(hookID)
	if event == "" {
		return false
	}
	if h.HookID != "" && h.HookID == hookID {
		return true
	}
	if h.HookEvent != event {
		return false
	}
	if h.HookName == hookID || (matcher != "" && h.HookName == event+":"+matcher) {
		return true
	}
	if matcher == "" || matcher == "*" {
		return true
	}
	for _, alt := range strings.Split(matcher, "|") {
		alt = strings.TrimSpace(alt)
		if alt != "" && strings.Contains(h.HookName, alt) {
			return true
		}
	}
	return false
}
