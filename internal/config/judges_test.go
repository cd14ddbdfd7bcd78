package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/conflict"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "judge.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func validConfig() *JudgeConfig {
	cfg := &JudgeConfig{
		Judge: JudgeSettings{
			SystemPrompt: "grade",
			UserPrompt:   "{{.UserPrompt}}",
		},
	}
	applyDefaults(cfg)
	return cfg
}

func TestLoadJudgeConfig_Success(t *testing.T) {
	path := writeConfig(t, `judge:
  num_samples: 3
  system_prompt: "You are a judge."
  user_prompt: |
    Prompt: {{.UserPrompt}}
    Fired: {{join .AllTriggered ", "}}
  model:
    id: claude-test
    temperature: 0.2
detection:
  mode: llm_only
  tool_rules:
    - tool: Invoke
      component_type: skill
      identity_path: $.target
domains:
  - name: vcs
    patterns: ["*git*"]
pricing:
  claude-test:
    input_per_1m: 1
    output_per_1m: 2
`)
	t.Setenv("JUDGE_CONFIG_PATH", path)

	cfg, err := LoadJudgeConfig()
	if err != nil {
		t.Fatalf("LoadJudgeConfig() failed: %v", err)
	}

	if cfg.Judge.NumSamples != 3 {
		t.Errorf("Expected num_samples=3, got %d", cfg.Judge.NumSamples)
	}
	if cfg.Judge.Model.MaxTokens != 1024 {
		t.Errorf("Expected default max_tokens=1024, got %d", cfg.Judge.Model.MaxTokens)
	}
	if cfg.Judge.Model.Temperature != 0.2 {
		t.Errorf("Expected temperature=0.2, got %f", cfg.Judge.Model.Temperature)
	}
	if cfg.Judge.AggregateMethod != "mean" {
		t.Errorf("Expected default aggregate_method=mean, got %s", cfg.Judge.AggregateMethod)
	}
	if cfg.Detection.Mode != "llm_only" {
		t.Errorf("Expected mode=llm_only, got %s", cfg.Detection.Mode)
	}
	if len(cfg.Detection.ToolRules) != 1 || cfg.Detection.ToolRules[0].IdentityPath != "$.target" {
		t.Errorf("Unexpected tool rules: %+v", cfg.Detection.ToolRules)
	}
	if len(cfg.Domains) != 1 || cfg.Domains[0].Name != "vcs" {
		t.Errorf("Unexpected domains: %+v", cfg.Domains)
	}
	if cfg.Pricing["claude-test"].OutputPer1M != 2 {
		t.Errorf("Expected pricing override, got %+v", cfg.Pricing)
	}
}

func TestLoadJudgeConfig_RepositoryDefault(t *testing.T) {
	cfg, err := LoadJudgeConfigFile(filepath.Join("..", "..", "configs", "judge.yaml"))
	if err != nil {
		t.Fatalf("bundled configs/judge.yaml failed to load: %v", err)
	}
	if cfg.Judge.NumSamples < 1 {
		t.Errorf("Expected at least one sample, got %d", cfg.Judge.NumSamples)
	}
	if len(cfg.Domains) == 0 {
		t.Error("Expected bundled domain rules")
	}
}

func TestLoadJudgeConfig_FileNotFound(t *testing.T) {
	t.Setenv("JUDGE_CONFIG_PATH", "/nonexistent/path/judge.yaml")

	_, err := LoadJudgeConfig()
	if err == nil {
		t.Fatal("Expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected 'failed to read config file' error, got: %v", err)
	}
}

func TestLoadJudgeConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `judge:
  system_prompt: "x"
    user_prompt: wrong_level
`)

	_, err := LoadJudgeConfigFile(path)
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected 'failed to parse YAML' error, got: %v", err)
	}
}

func TestValidate_MissingPrompts(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.SystemPrompt = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for missing system prompt")
	}
	if !strings.Contains(err.Error(), "SystemPrompt") {
		t.Errorf("Expected error to name SystemPrompt, got: %v", err)
	}
}

func TestValidate_InvalidPromptTemplate(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.UserPrompt = "{{.InvalidSyntax"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for invalid template syntax")
	}
	if !strings.Contains(err.Error(), "invalid prompt template") {
		t.Errorf("Expected 'invalid prompt template' error, got: %v", err)
	}
}

func TestValidate_InvalidTemperature(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
	}{
		{"negative", -0.1},
		{"too high", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Judge.Model.Temperature = tt.temperature

			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for temperature=%f", tt.temperature)
			}
		})
	}
}

func TestValidate_SampleBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Judge.NumSamples = 11

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for num_samples=11")
	}
}

func TestValidate_UnknownDetectionMode(t *testing.T) {
	cfg := validConfig()
	cfg.Detection.Mode = "heuristic"

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for unknown detection mode")
	}
}

func TestValidate_DuplicateDomains(t *testing.T) {
	cfg := validConfig()
	cfg.Domains = []conflict.DomainRule{
		{Name: "vcs", Patterns: []string{"*git*"}},
		{Name: "vcs", Patterns: []string{"*commit*"}},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error for duplicate domain")
	}
	if !strings.Contains(err.Error(), "duplicate domain name") {
		t.Errorf("Expected 'duplicate domain name' error, got: %v", err)
	}
}

func TestValidate_DomainWithoutPatterns(t *testing.T) {
	cfg := validConfig()
	cfg.Domains = []conflict.DomainRule{{Name: "empty"}}

	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for domain without patterns")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &JudgeConfig{}
	applyDefaults(cfg)

	if cfg.Judge.Model.MaxTokens != 1024 {
		t.Errorf("Expected default max_tokens=1024, got %d", cfg.Judge.Model.MaxTokens)
	}
	if cfg.Judge.NumSamples != 1 {
		t.Errorf("Expected default num_samples=1, got %d", cfg.Judge.NumSamples)
	}
	if cfg.Detection.Mode != "programmatic_first" {
		t.Errorf("Expected default mode programmatic_first, got %s", cfg.Detection.Mode)
	}
}
