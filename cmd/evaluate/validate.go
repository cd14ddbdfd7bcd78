package main

import (
	"context"
	"fmt"
	"io"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var (
		input      string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an input file and the judge config without calling any LLM",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				if _, err := config.LoadJudgeConfigFile(configPath); err != nil {
					return err
				}
				log.Info().Str("file", configPath).Msg("Judge config valid")
			}

			in, err := openInput(input)
			if err != nil {
				return err
			}
			defer in.Close()

			return validateInputs(cmd.Context(), in)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Input JSONL file, '-' for stdin")
	cmd.Flags().StringVar(&configPath, "config", "", "Judge config to validate as well")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func validateInputs(ctx context.Context, r io.Reader) error {
	total, errorCount := 0, 0
	for record := range batch.NewReader(r, &log.Logger).ReadAll(ctx) {
		total++
		if record.Error != nil {
			log.Error().
				Int("line", record.LineNumber).
				Err(record.Error).
				Msg("Validation error")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("validation failed: %d of %d records invalid", errorCount, total)
	}

	log.Info().Int("records", total).Msg("Validation successful")
	return nil
}
