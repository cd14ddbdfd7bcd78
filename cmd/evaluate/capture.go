package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/capture"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// captureCmd rebuilds an execution record from a recorded runtime event log
// and prints it as one evaluation input line.
func captureCmd() *cobra.Command {
	var (
		events       string
		scenarioPath string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Replay a runtime event log into an evaluation input line",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(scenarioPath)
			if err != nil {
				return fmt.Errorf("failed to read scenario: %w", err)
			}
			var scenario models.Scenario
			if err := json.Unmarshal(raw, &scenario); err != nil {
				return fmt.Errorf("invalid scenario JSON: %w", err)
			}

			in, err := openInput(events)
			if err != nil {
				return err
			}
			defer in.Close()

			collector := capture.NewCollector(&log.Logger)
			n, err := capture.Replay(in, collector.Handlers())
			if err != nil {
				return err
			}

			input := models.EvaluationInput{
				Scenario:  scenario,
				Execution: collector.Snapshot().Record(scenario.ID),
			}
			if err := batch.ValidateInput(&input); err != nil {
				return err
			}

			out, err := openOutput(output)
			if err != nil {
				return err
			}
			defer out.Close()

			if err := json.NewEncoder(out).Encode(input); err != nil {
				return err
			}

			log.Info().
				Str("scenario_id", scenario.ID).
				Int("events", n).
				Int("captures", len(input.Execution.DetectedTools)).
				Msg("Execution record captured")
			return nil
		},
	}

	cmd.Flags().StringVar(&events, "events", "", "Runtime event log (JSONL), '-' for stdin")
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Scenario JSON file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.MarkFlagRequired("events")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}
