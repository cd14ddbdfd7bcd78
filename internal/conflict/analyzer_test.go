package conflict

import (
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skill(name string) models.Detection {
	return models.Detection{ComponentType: models.ComponentSkill, ComponentName: name, Confidence: 100}
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	tagger, err := NewTagger([]DomainRule{
		{Name: "vcs", Patterns: []string{"*:git-*", "commit*", "*pr-review*"}},
		{Name: "docs", Patterns: []string{"skill:doc*", "*readme*"}},
	})
	require.NoError(t, err)
	return NewAnalyzer(tagger)
}

func TestAnalyze(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	tests := []struct {
		name         string
		unique       []models.Detection
		wantConflict bool
		wantSeverity models.Severity
		wantUnexpect int
	}{
		{"only expected", []models.Detection{skill("commit")}, false, models.SeverityNone, 0},
		{"nothing triggered", nil, false, models.SeverityNone, 0},
		{"single wrong component cross domain", []models.Detection{skill("docgen")}, true, models.SeverityMajor, 1},
		{"single wrong component same domain", []models.Detection{skill("git-push")}, true, models.SeverityMinor, 1},
		{"expected plus same domain extra", []models.Detection{skill("commit"), skill("pr-review")}, true, models.SeverityMinor, 1},
		{"expected plus cross domain extra", []models.Detection{skill("commit"), skill("readme-writer")}, true, models.SeverityMajor, 1},
		{"two unexpected", []models.Detection{skill("commit"), skill("git-push"), skill("pr-review")}, true, models.SeverityMajor, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.Analyze("commit", models.ComponentSkill, tt.unique)
			assert.Equal(t, tt.wantConflict, got.HasConflict)
			assert.Equal(t, tt.wantSeverity, got.Severity)
			assert.Len(t, got.UnexpectedComponents, tt.wantUnexpect)
			assert.Len(t, got.AllTriggered, len(tt.unique))
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestAnalyze_TypeMismatchIsUnexpected(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	got := analyzer.Analyze("commit", models.ComponentSkill, []models.Detection{
		{ComponentType: models.ComponentCommand, ComponentName: "commit"},
	})

	assert.True(t, got.HasConflict)
	require.Len(t, got.UnexpectedComponents, 1)
	assert.Equal(t, models.ComponentCommand, got.UnexpectedComponents[0].Type)
}

func TestAnalyze_NamespacedExpectedComponent(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	got := analyzer.Analyze("commit", models.ComponentSkill, []models.Detection{skill("my-plugin:commit")})

	assert.False(t, got.HasConflict)
	assert.Equal(t, models.SeverityNone, got.Severity)
}

func TestTagger_Fallbacks(t *testing.T) {
	tagger, err := NewTagger(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme"}, tagger.Domains(models.ComponentRef{Type: models.ComponentSkill, Name: "acme:deploy"}))
	assert.Equal(t, []string{"db"}, tagger.Domains(models.ComponentRef{Type: models.ComponentSkill, Name: "db-migrate"}))
	assert.Equal(t, []string{"db"}, tagger.Domains(models.ComponentRef{Type: models.ComponentSkill, Name: "DB_seed"}))
	assert.Nil(t, tagger.Domains(models.ComponentRef{Type: models.ComponentSkill, Name: ""}))

	assert.True(t, tagger.SameDomain(
		models.ComponentRef{Type: models.ComponentSkill, Name: "db-migrate"},
		models.ComponentRef{Type: models.ComponentCommand, Name: "db_seed"},
	))
	assert.False(t, tagger.SameDomain(
		models.ComponentRef{Type: models.ComponentSkill, Name: "db-migrate"},
		models.ComponentRef{Type: models.ComponentSkill, Name: "lint-fix"},
	))
}

func TestTagger_RuleMatchesTypedIdentity(t *testing.T) {
	tagger, err := NewTagger([]DomainRule{{Name: "infra", Patterns: []string{"mcp_server:*"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"infra"}, tagger.Domains(models.ComponentRef{Type: models.ComponentMCPServer, Name: "terraform"}))
	assert.Equal(t, []string{"terraform"}, tagger.Domains(models.ComponentRef{Type: models.ComponentSkill, Name: "terraform"}))
}

func TestNewTagger_InvalidPattern(t *testing.T) {
	_, err := NewTagger([]DomainRule{{Name: "bad", Patterns: []string{"[unclosed"}}})
	assert.Error(t, err)
}
