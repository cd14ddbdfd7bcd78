package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
	"github.com/rs/zerolog"
)

// LLMJudge grades a scenario against the configured rubric.
type LLMJudge struct {
	rubric     *Rubric
	structured bool
	llmClient  llm.LLMClient
	prices     *pricing.Table
	logger     *zerolog.Logger
}

func NewLLMJudge(
	settings config.JudgeSettings,
	llmClient llm.LLMClient,
	prices *pricing.Table,
	logger *zerolog.Logger,
) (*LLMJudge, error) {
	if llmClient == nil {
		return nil, fmt.Errorf("judge requires an LLM client")
	}

	rubric, err := NewRubric(settings)
	if err != nil {
		return nil, err
	}

	if prices == nil {
		prices = pricing.Default()
	}

	return &LLMJudge{
		rubric:     rubric,
		structured: settings.Structured,
		llmClient:  llmClient,
		prices:     prices,
		logger:     logger,
	}, nil
}

func (j *LLMJudge) Rubric() *Rubric {
	return j.rubric
}

func (j *LLMJudge) Evaluate(ctx context.Context, data PromptData) models.JudgeResponse {
	now := time.Now()

	request, err := j.rubric.Render(data)
	if err != nil {
		j.logger.Error().
			Err(err).
			Str("scenario_id", data.ScenarioID).
			Msg("failed to build prompt from template")
		return ErrorResponse(models.JudgeErrorCall, err)
	}

	resp, err := j.complete(ctx, request)
	if err != nil {
		kind := models.JudgeErrorCall
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = models.JudgeErrorTimeout
			err = fmt.Errorf("%w: %v", ErrJudgeTimeout, err)
		}
		j.logger.Error().
			Err(err).
			Str("scenario_id", data.ScenarioID).
			Str("kind", string(kind)).
			Msg("LLM call failed")
		return ErrorResponse(kind, err)
	}

	cost := j.prices.Cost(modelOr(resp.Model, request.Model), resp.Usage)

	judgment, err := ParseResponse(resp.Text)
	if err != nil {
		j.logger.Error().
			Err(err).
			Str("scenario_id", data.ScenarioID).
			Str("content", resp.Text).
			Msg("failed to parse judge response")
		degraded := ErrorResponse(models.JudgeErrorCall, err)
		degraded.CostUSD = cost
		return degraded
	}
	judgment.CostUSD = cost

	j.logger.Debug().
		Str("scenario_id", data.ScenarioID).
		Float64("quality_score", judgment.QualityScore).
		Str("trigger_accuracy", string(judgment.TriggerAccuracy)).
		Dur("duration", time.Since(now)).
		Msg("judge completed")

	return judgment
}

func (j *LLMJudge) complete(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if j.structured {
		if sc, ok := j.llmClient.(llm.StructuredCompleter); ok {
			return sc.CreateStructuredCompletion(ctx, request)
		}
	}
	return j.llmClient.CreateCompletion(ctx, request)
}

func modelOr(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
