package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/api/middleware"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/database"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/executor"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

const Version = "1.0.0"

type Evaluator interface {
	Evaluate(ctx context.Context, inputs []models.EvaluationInput) (*models.EvaluationArtifact, error)
	EvaluateScenario(ctx context.Context, input models.EvaluationInput) (models.EvaluationResult, error)
}

type ArtifactStore interface {
	Save(ctx context.Context, a *models.EvaluationArtifact) error
	Load(ctx context.Context, runID string) (*models.EvaluationArtifact, error)
}

type Handler struct {
	evaluator Evaluator
	store     ArtifactStore
	logger    *zerolog.Logger
}

// NewHandler accepts a nil store; run lookups then answer 501.
func NewHandler(evaluator Evaluator, store ArtifactStore, logger *zerolog.Logger) *Handler {
	return &Handler{
		evaluator: evaluator,
		store:     store,
		logger:    logger,
	}
}

// POST /api/v1/evaluate
func (h *Handler) Evaluate(req *restful.Request, resp *restful.Response) {
	var body EvaluateSuiteRequest
	if err := req.ReadEntity(&body); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if len(body.Inputs) == 0 {
		middleware.HandleError(resp, errors.New("inputs must not be empty"), http.StatusBadRequest)
		return
	}
	for i := range body.Inputs {
		if err := batch.ValidateInput(&body.Inputs[i]); err != nil {
			middleware.HandleError(resp, fmt.Errorf("input %d: %w", i, err), http.StatusBadRequest)
			return
		}
	}

	h.logger.Info().
		Str("plugin", body.PluginName).
		Int("inputs", len(body.Inputs)).
		Msg("Start suite evaluation")

	ctx := req.Request.Context()
	artifact, err := h.evaluator.Evaluate(ctx, body.Inputs)
	if err != nil {
		h.logger.Error().Err(err).Msg("Suite evaluation failed")
		middleware.HandleError(resp, err, statusFor(err))
		return
	}
	if body.PluginName != "" {
		artifact.PluginName = body.PluginName
	}

	if body.Persist && h.store != nil {
		if err := h.store.Save(ctx, artifact); err != nil {
			h.logger.Error().Err(err).Str("run_id", artifact.RunID).Msg("Failed to persist artifact")
			middleware.HandleError(resp, err, http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info().
		Str("run_id", artifact.RunID).
		Float64("accuracy", artifact.Metrics.Accuracy).
		Float64("total_cost_usd", artifact.Cost.TotalUSD).
		Msg("Suite evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, artifact)
}

// POST /api/v1/evaluate/scenario
func (h *Handler) EvaluateScenario(req *restful.Request, resp *restful.Response) {
	var input models.EvaluationInput
	if err := req.ReadEntity(&input); err != nil {
		h.logger.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}
	if err := batch.ValidateInput(&input); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("scenario_id", input.Scenario.ID).
		Str("component_type", string(input.Scenario.ComponentType)).
		Msg("Start scenario evaluation")

	result, err := h.evaluator.EvaluateScenario(req.Request.Context(), input)
	if err != nil {
		h.logger.Error().Err(err).Str("scenario_id", input.Scenario.ID).Msg("Scenario evaluation failed")
		middleware.HandleError(resp, err, statusFor(err))
		return
	}

	h.logger.Info().
		Str("scenario_id", result.ScenarioID).
		Bool("triggered", result.Triggered).
		Bool("correct", result.Correct).
		Msg("Scenario evaluation complete")

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// GET /api/v1/runs/{run_id}
func (h *Handler) GetRun(req *restful.Request, resp *restful.Response) {
	if h.store == nil {
		middleware.HandleError(resp, errors.New("artifact store not configured"), http.StatusNotImplemented)
		return
	}

	runID := req.PathParameter("run_id")
	artifact, err := h.store.Load(req.Request.Context(), runID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, database.ErrRunNotFound) {
			status = http.StatusNotFound
		}
		middleware.HandleError(resp, err, status)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, artifact)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, batch.ErrBatchTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, executor.ErrInvariantViolation):
		return http.StatusInternalServerError
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
