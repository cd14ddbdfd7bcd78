package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

const maxLineBytes = 16 * 1024 * 1024

// InputRecord is one parsed line of the input file. Error is set when the
// line could not be parsed or validated.
type InputRecord struct {
	LineNumber int
	Input      models.EvaluationInput
	Error      error
}

type Reader struct {
	r      io.Reader
	logger *zerolog.Logger
}

func NewReader(r io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{
		r:      r,
		logger: logger,
	}
}

// ReadAll streams records until EOF or ctx is canceled. Blank lines are
// skipped but still counted.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	out := make(chan InputRecord)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}

			record := r.parse(line, text)
			select {
			case out <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Int("line", line+1).Msg("failed to scan input")
			select {
			case out <- InputRecord{LineNumber: line + 1, Error: fmt.Errorf("scan input: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out
}

func (r *Reader) parse(line int, text string) InputRecord {
	record := InputRecord{LineNumber: line}

	if err := json.Unmarshal([]byte(text), &record.Input); err != nil {
		record.Error = fmt.Errorf("line %d: invalid JSON: %w", line, err)
		return record
	}

	if err := ValidateInput(&record.Input); err != nil {
		record.Error = fmt.Errorf("line %d: %w", line, err)
	}
	return record
}

var inputValidator = validator.New()

// ValidateInput checks the scenario and links the execution record to it,
// filling a missing execution scenario_id.
func ValidateInput(in *models.EvaluationInput) error {
	if err := inputValidator.Struct(in.Scenario); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	switch {
	case in.Execution.ScenarioID == "":
		in.Execution.ScenarioID = in.Scenario.ID
	case in.Execution.ScenarioID != in.Scenario.ID:
		return fmt.Errorf("execution scenario_id %q does not match scenario id %q", in.Execution.ScenarioID, in.Scenario.ID)
	}
	return nil
}

// ReadInputs drains the reader, returning valid inputs and the failed records.
func ReadInputs(ctx context.Context, r io.Reader, logger *zerolog.Logger) ([]models.EvaluationInput, []InputRecord) {
	var inputs []models.EvaluationInput
	var failed []InputRecord
	for record := range NewReader(r, logger).ReadAll(ctx) {
		if record.Error != nil {
			logger.Warn().Err(record.Error).Int("line", record.LineNumber).Msg("skipping invalid input line")
			failed = append(failed, record)
			continue
		}
		inputs = append(inputs, record.Input)
	}
	return inputs, failed
}
