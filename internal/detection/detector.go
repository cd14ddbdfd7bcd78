package detection

import (
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

const fullConfidence = 100

// Input is what every detector sees for one scenario run.
type Input struct {
	Scenario models.Scenario
	Record   models.ExecutionRecord
}

type Detector interface {
	Name() string
	Detect(in Input) []models.Detection
}

// Runner runs detectors in order. Order matters: de-duplication keeps the
// first evidence seen for a component.
type Runner struct {
	Detectors []Detector
}

func NewRunner(detectors []Detector) *Runner {
	return &Runner{
		Detectors: detectors,
	}
}

func (r *Runner) Run(in Input) []models.Detection {
	var detections []models.Detection
	for _, d := range r.Detectors {
		detections = append(detections, d.Detect(in)...)
	}
	return detections
}

// Dedupe collapses repeated detections of the same (type, name), keeping the first.
func Dedupe(detections []models.Detection) []models.Detection {
	seen := make(map[models.ComponentRef]bool, len(detections))
	unique := make([]models.Detection, 0, len(detections))
	for _, d := range detections {
		key := models.ComponentRef{Type: d.ComponentType, Name: d.ComponentName}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, d)
	}
	return unique
}

// Refs lists the component identity of each detection in order.
func Refs(detections []models.Detection) []models.ComponentRef {
	refs := make([]models.ComponentRef, 0, len(detections))
	for _, d := range detections {
		refs = append(refs, models.ComponentRef{Type: d.ComponentType, Name: d.ComponentName})
	}
	return refs
}

// WasExpectedComponentTriggered reports whether expected (optionally of the
// given type) is among the detections.
func WasExpectedComponentTriggered(detections []models.Detection, expected string, componentType models.ComponentType) bool {
	if expected == "" {
		return false
	}
	for _, d := range detections {
		if componentType != "" && d.ComponentType != componentType {
			continue
		}
		if SameComponent(d.ComponentName, expected) {
			return true
		}
	}
	return false
}

// WasExpectedHookTriggered reports whether any hook response matches hookID.
func WasExpectedHookTriggered(hooks []models.HookResponseCapture, hookID string) bool {
	for _, h := range hooks {
		if MatchHook(h, hookID) {
			return true
		}
	}
	return false
}
