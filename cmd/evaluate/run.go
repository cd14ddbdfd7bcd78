package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/setup"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type runOptions struct {
	input      string
	output     string
	format     string
	pluginName string
	forceSync  bool
	samples    int
	strict     bool
	persist    bool
}

func runCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a JSONL file of scenario runs",
		Example: `  trigger-eval run -i runs.jsonl -o artifact.json
  cat runs.jsonl | trigger-eval run -i - --format summary`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Input JSONL file, '-' for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.format, "format", batch.FormatJSON, "Output format: json, jsonl or summary")
	cmd.Flags().StringVar(&opts.pluginName, "plugin", "", "Plugin name recorded in the artifact")
	cmd.Flags().BoolVar(&opts.forceSync, "sync", false, "Always judge synchronously, never through the batch path")
	cmd.Flags().IntVar(&opts.samples, "samples", 0, "Judge samples per run (overrides the judge config)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any input line is invalid")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Store the artifact in Postgres (requires POSTGRES_HOST)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runEvaluate(ctx context.Context, opts runOptions) error {
	start := time.Now()

	cfg := setup.LoadConfig()
	if opts.pluginName != "" {
		cfg.PluginName = opts.pluginName
	}
	if opts.samples > 0 {
		cfg.NumSamples = opts.samples
	}
	cfg.ForceSync = cfg.ForceSync || opts.forceSync

	in, err := openInput(opts.input)
	if err != nil {
		return err
	}
	defer in.Close()

	inputs, failed := batch.ReadInputs(ctx, in, &log.Logger)
	log.Info().Int("valid", len(inputs)).Int("invalid", len(failed)).Msg("Input file parsed")
	if opts.strict && len(failed) > 0 {
		return fmt.Errorf("%d invalid input lines", len(failed))
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no valid inputs")
	}

	deps, err := setup.Wire(ctx, cfg, &log.Logger)
	if err != nil {
		return fmt.Errorf("failed to wire dependencies: %w", err)
	}
	defer deps.Close()

	var store artifactSaver
	if opts.persist {
		if deps.Store == nil {
			return fmt.Errorf("--persist requires POSTGRES_HOST")
		}
		store = deps.Store
	}

	artifact, err := deps.Executor.Evaluate(ctx, inputs)
	if err != nil {
		return err
	}

	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := writeAndPersist(ctx, out, opts.format, store, artifact, deps.Logger); err != nil {
		return err
	}

	log.Info().
		Str("run_id", artifact.RunID).
		Int("scenarios", artifact.Metrics.TotalScenarios).
		Float64("accuracy", artifact.Metrics.Accuracy).
		Float64("total_cost_usd", artifact.Cost.TotalUSD).
		Dur("duration", time.Since(start)).
		Msg("Evaluation complete")

	return nil
}

type artifactSaver interface {
	Save(ctx context.Context, artifact *models.EvaluationArtifact) error
}

// writeAndPersist writes the artifact before saving it, so a store failure
// never loses the output. A nil store skips persistence.
func writeAndPersist(ctx context.Context, out io.Writer, format string, store artifactSaver, artifact *models.EvaluationArtifact, logger *zerolog.Logger) error {
	writer, err := batch.NewWriter(out, format, logger)
	if err != nil {
		return err
	}
	if err := writer.WriteArtifact(artifact); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	if store == nil {
		return nil
	}
	if err := store.Save(ctx, artifact); err != nil {
		return fmt.Errorf("artifact %s written but not persisted: %w", artifact.RunID, err)
	}
	return nil
}
