package mcpadapter

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

type Evaluator interface {
	Evaluate(ctx context.Context, inputs []models.EvaluationInput) (*models.EvaluationArtifact, error)
	EvaluateScenario(ctx context.Context, input models.EvaluationInput) (models.EvaluationResult, error)
}

// EvaluateScenarioInput is the MCP tool input schema for a single run.
type EvaluateScenarioInput struct {
	Scenario  models.Scenario        `json:"scenario" jsonschema:"the test scenario: id, component_ref, component_type, scenario_type, user_prompt, expected_trigger, expected_component"`
	Execution models.ExecutionRecord `json:"execution" jsonschema:"captured execution record of the scenario run"`
}

// EvaluateSuiteInput is the MCP tool input schema for a suite of runs.
type EvaluateSuiteInput struct {
	PluginName string                   `json:"plugin_name,omitempty" jsonschema:"plugin under evaluation"`
	Inputs     []models.EvaluationInput `json:"inputs" jsonschema:"scenario runs to evaluate"`
}

// EvaluateFileInput points at a JSONL file with one evaluation input per line.
type EvaluateFileInput struct {
	Path       string `json:"path" jsonschema:"path to a JSONL file of evaluation inputs"`
	PluginName string `json:"plugin_name,omitempty" jsonschema:"plugin under evaluation"`
}

// SuiteSummary is the tool output for suite evaluations.
type SuiteSummary struct {
	RunID      string                    `json:"run_id"`
	PluginName string                    `json:"plugin_name,omitempty"`
	Cost       models.CostBreakdown      `json:"cost"`
	Metrics    models.EvalMetrics        `json:"metrics"`
	Results    []models.EvaluationResult `json:"results"`
}

// NewServer registers the evaluation tools on a new MCP server.
func NewServer(eval Evaluator, version string, logger *zerolog.Logger) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "trigger-eval",
			Version: version,
		}, nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_scenario",
		Description: "Evaluate whether one scenario run activated the expected plugin component. Always judged synchronously.",
	}, NewEvaluateScenarioHandler(eval, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_suite",
		Description: "Evaluate a suite of scenario runs and return per-run results with aggregated metrics. Large suites may be judged through the batch path.",
	}, NewEvaluateSuiteHandler(eval, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_file",
		Description: "Evaluate every scenario run in a JSONL file. Invalid lines are skipped and reported in the log.",
	}, NewEvaluateFileHandler(eval, logger))

	return server
}

// NewEvaluateScenarioHandler returns a tool handler for single-run evaluation.
// Pass the returned function to mcp.AddTool.
func NewEvaluateScenarioHandler(eval Evaluator, logger *zerolog.Logger) func(context.Context, *mcp.CallToolRequest, EvaluateScenarioInput) (*mcp.CallToolResult, models.EvaluationResult, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateScenarioInput) (*mcp.CallToolResult, models.EvaluationResult, error) {
		in := models.EvaluationInput{Scenario: input.Scenario, Execution: input.Execution}
		if err := batch.ValidateInput(&in); err != nil {
			return nil, models.EvaluationResult{}, err
		}

		result, err := eval.EvaluateScenario(ctx, in)
		if err != nil {
			logger.Error().Err(err).Str("scenario_id", in.Scenario.ID).Msg("Scenario evaluation failed")
			return nil, models.EvaluationResult{}, err
		}
		return nil, result, nil
	}
}

func NewEvaluateSuiteHandler(eval Evaluator, logger *zerolog.Logger) func(context.Context, *mcp.CallToolRequest, EvaluateSuiteInput) (*mcp.CallToolResult, SuiteSummary, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateSuiteInput) (*mcp.CallToolResult, SuiteSummary, error) {
		if len(input.Inputs) == 0 {
			return nil, SuiteSummary{}, fmt.Errorf("inputs must not be empty")
		}
		for i := range input.Inputs {
			if err := batch.ValidateInput(&input.Inputs[i]); err != nil {
				return nil, SuiteSummary{}, fmt.Errorf("input %d: %w", i, err)
			}
		}
		return evaluateSuite(ctx, eval, input.PluginName, input.Inputs, logger)
	}
}

func NewEvaluateFileHandler(eval Evaluator, logger *zerolog.Logger) func(context.Context, *mcp.CallToolRequest, EvaluateFileInput) (*mcp.CallToolResult, SuiteSummary, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input EvaluateFileInput) (*mcp.CallToolResult, SuiteSummary, error) {
		f, err := os.Open(input.Path)
		if err != nil {
			return nil, SuiteSummary{}, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		inputs, failed := batch.ReadInputs(ctx, f, logger)
		if len(inputs) == 0 {
			return nil, SuiteSummary{}, fmt.Errorf("no valid inputs in %s (%d invalid lines)", input.Path, len(failed))
		}
		return evaluateSuite(ctx, eval, input.PluginName, inputs, logger)
	}
}

func evaluateSuite(ctx context.Context, eval Evaluator, plugin string, inputs []models.EvaluationInput, logger *zerolog.Logger) (*mcp.CallToolResult, SuiteSummary, error) {
	artifact, err := eval.Evaluate(ctx, inputs)
	if err != nil {
		logger.Error().Err(err).Int("inputs", len(inputs)).Msg("Suite evaluation failed")
		return nil, SuiteSummary{}, err
	}
	if plugin != "" {
		artifact.PluginName = plugin
	}
	return nil, SuiteSummary{
		RunID:      artifact.RunID,
		PluginName: artifact.PluginName,
		Cost:       artifact.Cost,
		Metrics:    artifact.Metrics,
		Results:    artifact.Results,
	}, nil
}
