package judge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
	"github.com/rs/zerolog"
)

// MockLLMClient is a hand-written LLMClient for judge tests.
type MockLLMClient struct {
	ResponseToReturn *llm.CompletionResponse
	ErrorToReturn    error

	mu          sync.Mutex
	Calls       int
	LastRequest *llm.CompletionRequest
}

func (m *MockLLMClient) CreateCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	m.Calls++
	m.LastRequest = &request
	m.mu.Unlock()
	if m.ErrorToReturn != nil {
		return nil, m.ErrorToReturn
	}
	return m.ResponseToReturn, nil
}

// MockStructuredClient also implements llm.StructuredCompleter.
type MockStructuredClient struct {
	MockLLMClient
	StructuredCalls int
}

func (m *MockStructuredClient) CreateStructuredCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	m.StructuredCalls++
	m.mu.Unlock()
	return m.ResponseToReturn, nil
}

func testSettings() config.JudgeSettings {
	return config.JudgeSettings{
		SystemPrompt: "You grade {{.ComponentType}} activations.",
		UserPrompt:   "Prompt: {{.UserPrompt}}\nFired: {{join .AllTriggered \", \"}}\nTranscript:\n{{.Transcript}}",
		Model:        config.ModelConfig{ID: "test-model", MaxTokens: 512},
	}
}

func testData() PromptData {
	return PromptData{
		ScenarioID:        "commit-direct-1",
		ScenarioType:      models.ScenarioDirect,
		ComponentType:     models.ComponentSkill,
		ExpectedComponent: "commit",
		ExpectedTrigger:   true,
		Triggered:         true,
		UserPrompt:        "commit my changes",
		Transcript:        "[0] user: commit my changes",
		AllTriggered:      []string{"skill:commit", "skill:git-push"},
	}
}

const validJudgment = `{"quality_score": 8, "response_relevance": 9, "trigger_accuracy": "correct",
"issues": ["slow"], "summary": "Skill fired and committed."}`

func newTestJudge(t *testing.T, client llm.LLMClient, settings config.JudgeSettings) *LLMJudge {
	t.Helper()
	logger := zerolog.Nop()
	prices := pricing.NewTable(map[string]pricing.ModelPricing{"test-model": {InputPer1M: 1_000_000, OutputPer1M: 0}})
	judge, err := NewLLMJudge(settings, client, prices, &logger)
	if err != nil {
		t.Fatalf("NewLLMJudge failed: %v", err)
	}
	return judge
}

func TestNewLLMJudge_InvalidTemplate(t *testing.T) {
	logger := zerolog.Nop()
	settings := testSettings()
	settings.UserPrompt = "{{.Invalid"

	_, err := NewLLMJudge(settings, &MockLLMClient{}, nil, &logger)
	if err == nil {
		t.Error("Expected error for invalid template")
	}
}

func TestNewLLMJudge_NilClient(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := NewLLMJudge(testSettings(), nil, nil, &logger); err == nil {
		t.Error("Expected error for nil client")
	}
}

func TestLLMJudge_Evaluate_Success(t *testing.T) {
	client := &MockLLMClient{
		ResponseToReturn: &llm.CompletionResponse{
			Text:  validJudgment,
			Usage: models.TokenUsage{InputTokens: 2},
		},
	}
	judge := newTestJudge(t, client, testSettings())

	resp := judge.Evaluate(context.Background(), testData())

	if resp.IsError() {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if resp.QualityScore != 8 {
		t.Errorf("Expected quality_score=8, got %f", resp.QualityScore)
	}
	if resp.TriggerAccuracy != models.AccuracyCorrect {
		t.Errorf("Expected trigger_accuracy=correct, got %s", resp.TriggerAccuracy)
	}
	if resp.CostUSD != 2 {
		t.Errorf("Expected cost=2 from pricing table, got %f", resp.CostUSD)
	}

	if client.LastRequest == nil {
		t.Fatal("Expected LLM to be called")
	}
	if client.LastRequest.SystemPrompt != "You grade skill activations." {
		t.Errorf("Unexpected system prompt: %q", client.LastRequest.SystemPrompt)
	}
	if !strings.Contains(client.LastRequest.UserPrompt, "skill:commit, skill:git-push") {
		t.Errorf("Expected triggered components in prompt, got %q", client.LastRequest.UserPrompt)
	}
	if client.LastRequest.Model != "test-model" || client.LastRequest.MaxTokens != 512 {
		t.Errorf("Unexpected model params: %+v", client.LastRequest)
	}
}

func TestLLMJudge_Evaluate_UsesStructuredCompletion(t *testing.T) {
	client := &MockStructuredClient{MockLLMClient: MockLLMClient{
		ResponseToReturn: &llm.CompletionResponse{Text: validJudgment},
	}}
	settings := testSettings()
	settings.Structured = true
	judge := newTestJudge(t, client, settings)

	resp := judge.Evaluate(context.Background(), testData())

	if resp.IsError() {
		t.Fatalf("Expected success, got %q", resp.Error)
	}
	if client.StructuredCalls != 1 || client.Calls != 0 {
		t.Errorf("Expected one structured call, got structured=%d plain=%d", client.StructuredCalls, client.Calls)
	}
}

func TestLLMJudge_Evaluate_Degrades(t *testing.T) {
	tests := []struct {
		name     string
		client   *MockLLMClient
		wantKind models.JudgeErrorKind
	}{
		{
			name:     "llm error",
			client:   &MockLLMClient{ErrorToReturn: errors.New("ThrottlingException")},
			wantKind: models.JudgeErrorCall,
		},
		{
			name:     "deadline exceeded",
			client:   &MockLLMClient{ErrorToReturn: context.DeadlineExceeded},
			wantKind: models.JudgeErrorTimeout,
		},
		{
			name:     "not json",
			client:   &MockLLMClient{ResponseToReturn: &llm.CompletionResponse{Text: "I think it was fine."}},
			wantKind: models.JudgeErrorCall,
		},
		{
			name:     "score out of range",
			client:   &MockLLMClient{ResponseToReturn: &llm.CompletionResponse{Text: `{"quality_score": 11, "response_relevance": 5, "trigger_accuracy": "correct"}`}},
			wantKind: models.JudgeErrorCall,
		},
		{
			name:     "unknown accuracy",
			client:   &MockLLMClient{ResponseToReturn: &llm.CompletionResponse{Text: `{"quality_score": 5, "response_relevance": 5, "trigger_accuracy": "maybe"}`}},
			wantKind: models.JudgeErrorCall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			judge := newTestJudge(t, tt.client, testSettings())

			resp := judge.Evaluate(context.Background(), testData())

			if !resp.IsError() {
				t.Fatal("Expected error response")
			}
			if resp.ErrorKind != tt.wantKind {
				t.Errorf("Expected kind %s, got %s", tt.wantKind, resp.ErrorKind)
			}
			if resp.QualityScore != 0 {
				t.Errorf("Expected zero score, got %f", resp.QualityScore)
			}
			if len(resp.Issues) == 0 {
				t.Error("Expected failure recorded in issues")
			}
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", validJudgment, false},
		{"markdown fence", "```json\n" + validJudgment + "\n```", false},
		{"surrounded by prose", "Here is my verdict:\n" + validJudgment + "\nThanks.", false},
		{"trailing comma", `{"quality_score": 5, "response_relevance": 5, "trigger_accuracy": "partial", "issues": ["a",],}`, false},
		{"highlight without quote", `{"quality_score": 5, "response_relevance": 5, "trigger_accuracy": "partial", "highlights": [{"description": "x"}]}`, true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && resp.Issues == nil {
				t.Error("Expected non-nil issues slice")
			}
		})
	}
}

func TestParseResponse_IgnoresInjectedErrorFields(t *testing.T) {
	resp, err := ParseResponse(`{"quality_score": 5, "response_relevance": 5, "trigger_accuracy": "correct", "error": "x", "cost_usd": 99}`)
	if err != nil {
		t.Fatalf("ParseResponse() failed: %v", err)
	}
	if resp.IsError() || resp.CostUSD != 0 {
		t.Errorf("Expected model-supplied error/cost to be cleared, got %+v", resp)
	}
}

func TestFormatTranscript(t *testing.T) {
	got := FormatTranscript([]models.TranscriptMessage{
		{Role: "user", Content: "hi "},
		{Role: "assistant", Content: "hello"},
	})
	want := "[0] user: hi\n[1] assistant: hello"
	if got != want {
		t.Errorf("FormatTranscript() = %q, want %q", got, want)
	}

	long := make([]models.TranscriptMessage, 0, 100)
	for i := 0; i < 100; i++ {
		long = append(long, models.TranscriptMessage{Role: "user", Content: strings.Repeat("x", 1000)})
	}
	truncated := FormatTranscript(long)
	if !strings.Contains(truncated, "truncated") {
		t.Error("Expected truncation marker for long transcript")
	}
}

func TestNewPromptData(t *testing.T) {
	scenario := models.Scenario{ID: "s1", ComponentType: models.ComponentSkill, ExpectedComponent: "commit", ExpectedTrigger: true}
	analysis := models.ConflictAnalysis{
		AllTriggered: []models.ComponentRef{{Type: models.ComponentSkill, Name: "docgen"}},
		HasConflict:  true,
		Severity:     models.SeverityMajor,
		Reason:       "cross domain",
	}

	data := NewPromptData(scenario, models.ExecutionRecord{}, false, nil, analysis)

	if data.ConflictReason != "major: cross domain" {
		t.Errorf("Unexpected conflict reason %q", data.ConflictReason)
	}
	if len(data.AllTriggered) != 1 || data.AllTriggered[0] != "skill:docgen" {
		t.Errorf("Unexpected triggered list %v", data.AllTriggered)
	}
}
