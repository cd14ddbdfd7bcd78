package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ConnectionString(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "eval", Password: "secret", Database: "trigger_eval"}
	assert.Equal(t, "postgresql://eval:secret@db:5432/trigger_eval?sslmode=disable", cfg.ConnectionString())

	cfg.SSLMode = "require"
	assert.Equal(t, "postgresql://eval:secret@db:5432/trigger_eval?sslmode=require", cfg.ConnectionString())
}

// Requires DATABASE_URL pointing at a scratch database.
func TestArtifactStore_SaveAndLoad(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	logger := zerolog.Nop()
	store := NewArtifactStore(pool, &logger)
	require.NoError(t, store.EnsureSchema(ctx))

	quality := 7.5
	artifact := &models.EvaluationArtifact{
		RunID:      uuid.NewString(),
		PluginName: "git-tools",
		Timestamp:  time.Now().UTC().Truncate(time.Microsecond),
		Config:     models.EvalConfigSnapshot{DetectionMode: models.DetectionProgrammaticFirst, NumSamples: 3},
		Metrics:    models.EvalMetrics{TotalScenarios: 2, Accuracy: 0.5, TotalCostUSD: 0.3},
		Results: []models.EvaluationResult{
			{ScenarioID: "a", Triggered: true, ExpectedTrigger: true, Correct: true, QualityScore: &quality},
			{ScenarioID: "b", ExpectedTrigger: true},
		},
	}
	require.NoError(t, store.Save(ctx, artifact))

	loaded, err := store.Load(ctx, artifact.RunID)
	require.NoError(t, err)
	assert.Equal(t, "git-tools", loaded.PluginName)
	assert.Equal(t, 3, loaded.Config.NumSamples)
	require.Len(t, loaded.Results, 2)
	assert.Equal(t, "a", loaded.Results[0].ScenarioID)
	require.NotNil(t, loaded.Results[0].QualityScore)
	assert.InDelta(t, 7.5, *loaded.Results[0].QualityScore, 1e-9)
	assert.InDelta(t, 0.3, loaded.Cost.TotalUSD, 1e-9)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}
