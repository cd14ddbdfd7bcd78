package detection

import (
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestParseServerTool(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantServer string
		wantTool   string
		wantOK     bool
	}{
		{"bare pattern", "server__tool", "server", "tool", true},
		{"mcp prefixed", "mcp__github__create_issue", "github", "create_issue", true},
		{"tool with separator", "mcp__db__query__raw", "db", "query__raw", true},
		{"plain tool", "Read", "", "", false},
		{"mcp without tool", "mcp__github", "", "", false},
		{"empty server", "__tool", "", "", false},
		{"empty tool", "server__", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, tool, ok := ParseServerTool(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantServer, server)
			assert.Equal(t, tt.wantTool, tool)
		})
	}
}

func TestMatchHook(t *testing.T) {
	tests := []struct {
		name   string
		hook   models.HookResponseCapture
		hookID string
		want   bool
	}{
		{"exact name", models.HookResponseCapture{HookName: "PreToolUse:Write", HookEvent: "PreToolUse"}, "PreToolUse::Write", true},
		{"hook id field", models.HookResponseCapture{HookID: "PostToolUse::Bash", HookEvent: "Other"}, "PostToolUse::Bash", true},
		{"substring alternative", models.HookResponseCapture{HookName: "PreToolUse:MultiEdit", HookEvent: "PreToolUse"}, "PreToolUse::Write|Edit", true},
		{"wrong event", models.HookResponseCapture{HookName: "PostToolUse:Write", HookEvent: "PostToolUse"}, "PreToolUse::Write", false},
		{"no matcher", models.HookResponseCapture{HookName: "SessionStart:startup", HookEvent: "SessionStart"}, "SessionStart", true},
		{"wildcard matcher", models.HookResponseCapture{HookName: "Stop", HookEvent: "Stop"}, "Stop::*", true},
		{"unrelated tool", models.HookResponseCapture{HookName: "PreToolUse:Bash", HookEvent: "PreToolUse"}, "PreToolUse::Write|Edit", false},
		{"empty id", models.HookResponseCapture{HookName: "Stop", HookEvent: "Stop"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchHook(tt.hook, tt.hookID))
		})
	}
}

func TestSameComponent(t *testing.T) {
	assert.True(t, SameComponent("commit", "commit"))
	assert.True(t, SameComponent("my-plugin:commit", "commit"))
	assert.True(t, SameComponent("Commit", "commit"))
	assert.False(t, SameComponent("commit-all", "commit"))
	assert.False(t, SameComponent("", "commit"))
}

func TestDedupeKeepsFirstEvidence(t *testing.T) {
	detections := []models.Detection{
		{ComponentType: models.ComponentSkill, ComponentName: "a", Evidence: "first"},
		{ComponentType: models.ComponentSkill, ComponentName: "a", Evidence: "second"},
		{ComponentType: models.ComponentAgent, ComponentName: "a", Evidence: "agent"},
	}

	unique := Dedupe(detections)

	assert.Len(t, unique, 2)
	assert.Equal(t, "first", unique[0].Evidence)
	assert.Equal(t, []models.ComponentRef{
		{Type: models.ComponentSkill, Name: "a"},
		{Type: models.ComponentAgent, Name: "a"},
	}, Refs(unique))
}
