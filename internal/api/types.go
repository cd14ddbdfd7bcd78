package api

import "github.com/povarna/generative-ai-agents/trigger-eval/internal/models"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// EvaluateSuiteRequest carries the scenario runs of one suite.
type EvaluateSuiteRequest struct {
	PluginName string                   `json:"plugin_name,omitempty"`
	Inputs     []models.EvaluationInput `json:"inputs"`
	// Persist stores the artifact when a store is configured.
	Persist bool `json:"persist,omitempty"`
}
