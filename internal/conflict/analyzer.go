package conflict

import (
	"fmt"
	"strings"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/detection"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

type Analyzer struct {
	tagger *Tagger
}

func NewAnalyzer(tagger *Tagger) *Analyzer {
	return &Analyzer{tagger: tagger}
}

// Analyze compares the expected component with the de-duplicated detections.
func (a *Analyzer) Analyze(expected string, expectedType models.ComponentType, unique []models.Detection) models.ConflictAnalysis {
	all := detection.Refs(unique)
	analysis := models.ConflictAnalysis{
		ExpectedComponent: expected,
		ExpectedType:      expectedType,
		AllTriggered:      all,
		Severity:          models.SeverityNone,
	}

	var unexpected []models.ComponentRef
	for _, ref := range all {
		if !a.isExpected(ref, expected, expectedType) {
			unexpected = append(unexpected, ref)
		}
	}
	analysis.UnexpectedComponents = unexpected

	analysis.HasConflict = len(all) > 1 || (len(all) == 1 && len(unexpected) == 1)
	if !analysis.HasConflict {
		if len(all) == 0 {
			analysis.Reason = "no components triggered"
		} else {
			analysis.Reason = "only the expected component triggered"
		}
		return analysis
	}

	expectedRef := models.ComponentRef{Type: expectedType, Name: expected}
	switch {
	case len(unexpected) >= 2:
		analysis.Severity = models.SeverityMajor
		analysis.Reason = fmt.Sprintf("%d unexpected components triggered: %s", len(unexpected), joinRefs(unexpected))
	case len(unexpected) == 1 && !a.tagger.SameDomain(expectedRef, unexpected[0]):
		analysis.Severity = models.SeverityMajor
		analysis.Reason = fmt.Sprintf("unexpected component %s is outside the domain of %s", unexpected[0], expectedRef)
	case len(unexpected) == 1:
		analysis.Severity = models.SeverityMinor
		analysis.Reason = fmt.Sprintf("unexpected component %s shares a domain with %s", unexpected[0], expectedRef)
	default:
		// Several detections that all resolve to the expected component.
		analysis.Severity = models.SeverityMinor
		analysis.Reason = fmt.Sprintf("expected component triggered through several identities: %s", joinRefs(all))
	}
	return analysis
}

func (a *Analyzer) isExpected(ref models.ComponentRef, expected string, expectedType models.ComponentType) bool {
	if expectedType != "" && ref.Type != expectedType {
		return false
	}
	return detection.SameComponent(ref.Name, expected)
}

func joinRefs(refs []models.ComponentRef) string {
	parts := make([]string, 0, len(refs))
	for _, r := range refs {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ", ")
}
