package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
)

//go:embed schema.sql
var schema string

var ErrRunNotFound = errors.New("evaluation run not found")

// ArtifactStore persists evaluation artifacts, one run row plus one row per
// result.
type ArtifactStore struct {
	pool   *pgxpool.Pool
	logger *zerolog.Logger
}

func NewArtifactStore(pool *pgxpool.Pool, logger *zerolog.Logger) *ArtifactStore {
	return &ArtifactStore{
		pool:   pool,
		logger: logger,
	}
}

func (s *ArtifactStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Save writes the artifact in a single transaction.
func (s *ArtifactStore) Save(ctx context.Context, a *models.EvaluationArtifact) error {
	configJSON, err := json.Marshal(a.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	metricsJSON, err := json.Marshal(a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	runQuery := `
        INSERT INTO evaluation_runs (run_id, plugin_name, created_at, config, metrics, total_cost, accuracy)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	if _, err := tx.Exec(ctx, runQuery,
		a.RunID,
		a.PluginName,
		a.Timestamp,
		configJSON,
		metricsJSON,
		a.Cost.TotalUSD,
		a.Metrics.Accuracy,
	); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", a.RunID, err)
	}

	resultQuery := `
        INSERT INTO evaluation_results (run_id, position, scenario_id, repetition, triggered, correct, quality_score, result)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	batch := &pgx.Batch{}
	for i, r := range a.Results {
		resultJSON, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal result %s: %w", r.ScenarioID, err)
		}
		batch.Queue(resultQuery, a.RunID, i, r.ScenarioID, r.Repetition, r.Triggered, r.Correct, r.QualityScore, resultJSON)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info().
		Str("run_id", a.RunID).
		Int("results", len(a.Results)).
		Msg("Artifact stored")
	return nil
}

// Load rebuilds a stored artifact.
func (s *ArtifactStore) Load(ctx context.Context, runID string) (*models.EvaluationArtifact, error) {
	a := &models.EvaluationArtifact{RunID: runID}
	var configJSON, metricsJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT plugin_name, created_at, config, metrics FROM evaluation_runs WHERE run_id = $1`,
		runID,
	).Scan(&a.PluginName, &a.Timestamp, &configJSON, &metricsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}
	if err := json.Unmarshal(configJSON, &a.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := json.Unmarshal(metricsJSON, &a.Metrics); err != nil {
		return nil, fmt.Errorf("failed to decode metrics: %w", err)
	}
	a.Cost = models.CostBreakdown{
		ExecutionUSD: a.Metrics.ExecutionCostUSD,
		JudgmentUSD:  a.Metrics.JudgmentCostUSD,
		TotalUSD:     a.Metrics.TotalCostUSD,
	}

	rows, err := s.pool.Query(ctx,
		`SELECT result FROM evaluation_results WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.EvaluationResult, error) {
		var raw []byte
		var r models.EvaluationResult
		if err := row.Scan(&raw); err != nil {
			return r, err
		}
		err := json.Unmarshal(raw, &r)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	a.Results = results
	return a, nil
}
