package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatJSONL   = "jsonl"
	FormatSummary = "summary"
)

var ErrUnsupportedFormat = fmt.Errorf("unsupported output format, supported: %s, %s, %s", FormatJSON, FormatJSONL, FormatSummary)

// Writer renders an evaluation artifact to a stream.
type Writer struct {
	w      *bufio.Writer
	format string
	logger *zerolog.Logger
}

func NewWriter(w io.Writer, format string, logger *zerolog.Logger) (*Writer, error) {
	switch format {
	case FormatJSON, FormatJSONL, FormatSummary:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &Writer{
		w:      bufio.NewWriter(w),
		format: format,
		logger: logger,
	}, nil
}

// WriteArtifact writes the artifact and flushes. jsonl emits one result per
// line followed by a header line carrying everything but the results.
func (w *Writer) WriteArtifact(a *models.EvaluationArtifact) error {
	var err error
	switch w.format {
	case FormatJSON:
		err = w.writeJSON(a)
	case FormatJSONL:
		err = w.writeJSONL(a)
	case FormatSummary:
		err = w.writeSummary(a)
	}
	if err != nil {
		return err
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	w.logger.Debug().
		Str("run_id", a.RunID).
		Str("format", w.format).
		Int("results", len(a.Results)).
		Msg("artifact written")
	return nil
}

func (w *Writer) writeJSON(a *models.EvaluationArtifact) error {
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	return nil
}

type artifactHeader struct {
	Type string `json:"type"`
	*models.EvaluationArtifact
	Results []models.EvaluationResult `json:"results,omitempty"`
}

type resultLine struct {
	Type  string `json:"type"`
	RunID string `json:"run_id"`
	models.EvaluationResult
}

func (w *Writer) writeJSONL(a *models.EvaluationArtifact) error {
	enc := json.NewEncoder(w.w)
	for _, r := range a.Results {
		if err := enc.Encode(resultLine{Type: "result", RunID: a.RunID, EvaluationResult: r}); err != nil {
			return fmt.Errorf("failed to encode result %s: %w", r.ScenarioID, err)
		}
	}
	if err := enc.Encode(artifactHeader{Type: "summary", EvaluationArtifact: a}); err != nil {
		return fmt.Errorf("failed to encode summary line: %w", err)
	}
	return nil
}

func (w *Writer) writeSummary(a *models.EvaluationArtifact) error {
	m := a.Metrics
	var b strings.Builder

	fmt.Fprintf(&b, "Evaluation %s (%s)\n", a.RunID, a.PluginName)
	fmt.Fprintf(&b, "  detection: %s, samples: %d, model: %s, batch: %t\n",
		a.Config.DetectionMode, a.Config.NumSamples, a.Config.Model, a.Config.UsedBatch)
	fmt.Fprintf(&b, "  scenarios: %d, triggered: %d (%.1f%%)\n", m.TotalScenarios, m.TriggeredCount, m.TriggerRate*100)
	fmt.Fprintf(&b, "  accuracy: %.1f%%, avg quality: %.2f\n", m.Accuracy*100, m.AvgQuality)
	fmt.Fprintf(&b, "  conflicts: %d (major %d, minor %d)\n", m.ConflictCount, m.MajorConflicts, m.MinorConflicts)
	fmt.Fprintf(&b, "  cost: $%.4f (execution $%.4f, judgment $%.4f)\n", a.Cost.TotalUSD, a.Cost.ExecutionUSD, a.Cost.JudgmentUSD)
	fmt.Fprintf(&b, "  errors: %d\n", m.ErrorCount)

	for _, kind := range sortedKeys(m.ErrorsByType) {
		fmt.Fprintf(&b, "    %s: %d\n", kind, m.ErrorsByType[kind])
	}

	if len(m.ByComponent) > 0 {
		b.WriteString("Components\n")
		for _, name := range sortedKeys(m.ByComponent) {
			c := m.ByComponent[name]
			fmt.Fprintf(&b, "  %-10s total %d, accuracy %.1f%%, quality %.2f, fp %d, fn %d\n",
				name, c.TotalScenarios, c.Accuracy*100, c.AvgQuality, c.FalsePositives, c.FalseNegatives)
		}
	}

	if ms := m.MultiSample; ms != nil {
		fmt.Fprintf(&b, "Multi-sample: %d samples, avg variance %.2f, consensus %.1f%%\n",
			ms.SampleCount, ms.AvgScoreVariance, ms.ConsensusRate*100)
		if len(ms.HighVarianceScenarios) > 0 {
			fmt.Fprintf(&b, "  high variance: %s\n", strings.Join(ms.HighVarianceScenarios, ", "))
		}
	}
	if rep := m.Repetition; rep != nil {
		fmt.Fprintf(&b, "Repetition: %d runs, consistency %.1f%%\n", rep.Repetitions, rep.ConsistencyRate*100)
		if len(rep.FlakyScenarioIDs) > 0 {
			fmt.Fprintf(&b, "  flaky: %s\n", strings.Join(rep.FlakyScenarioIDs, ", "))
		}
	}
	if c := m.Cache; c != nil {
		fmt.Fprintf(&b, "Cache: hit rate %.1f%%, savings $%.4f\n", c.HitRate*100, c.EstimatedSavingsUSD)
	}

	var failing []string
	for _, r := range a.Results {
		if !r.Correct {
			failing = append(failing, r.ScenarioID)
		}
	}
	if len(failing) > 0 {
		fmt.Fprintf(&b, "Incorrect: %s\n", strings.Join(failing, ", "))
	}

	if _, err := w.w.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
