package setup

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/aggregator"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/batch"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/conflict"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/database"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/detection"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/executor"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/judge"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/pricing"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/stream"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/stream/redis"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/telemetry"
	"github.com/rs/zerolog"
)

type Dependencies struct {
	Executor    *executor.Executor
	Metrics     *telemetry.Metrics
	LLM         llm.LLMClient
	JudgeConfig *config.JudgeConfig
	// Store is nil unless POSTGRES_HOST is set.
	Store  *database.ArtifactStore
	Logger *zerolog.Logger

	closers []func()
}

// Close releases the database pool, if any.
func (d *Dependencies) Close() {
	for _, c := range d.closers {
		c()
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	judgeConfig, err := config.LoadJudgeConfigFile(cfg.JudgeConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load judge config: %w", err)
	}

	llmClient, err := CreateLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.DefaultProvider, err)
	}

	prices := pricing.Default()
	prices.Merge(judgeConfig.Pricing)

	// Detection + conflicts
	engine, err := detection.NewEngine(judgeConfig.Detection.ToolRules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build detection engine: %w", err)
	}
	tagger, err := conflict.NewTagger(judgeConfig.Domains)
	if err != nil {
		return nil, fmt.Errorf("failed to build domain tagger: %w", err)
	}

	// Judge
	numSamples := judgeConfig.Judge.NumSamples
	if cfg.NumSamples > 0 {
		numSamples = cfg.NumSamples
	}
	llmJudge, err := judge.NewLLMJudge(judgeConfig.Judge, llmClient, prices, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build judge: %w", err)
	}
	dispatcher := judge.NewSyncDispatcher(llmJudge, judge.DispatcherConfig{
		NumSamples:    numSamples,
		Concurrency:   cfg.Concurrency,
		CallTimeout:   cfg.CallTimeout,
		RatePerSecond: cfg.JudgeRate,
	}, logger)

	metrics := telemetry.NewMetrics()

	components := executor.Components{
		Detector:   engine,
		Analyzer:   conflict.NewAnalyzer(tagger),
		Sync:       dispatcher,
		Aggregator: aggregator.NewAggregator(prices, logger),
		Observer:   metrics,
	}

	// Batch path needs a stream backend.
	if cfg.RedisAddr != "" && cfg.BatchThreshold > 0 {
		batchClient, err := stream.NewBatchClient(ctx, StreamConfig(cfg), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create batch client: %w", err)
		}
		components.Batch = batch.NewManager(batchClient, llmJudge.Rubric(), prices, batch.RealClock(), batch.ManagerConfig{
			NumSamples:   numSamples,
			PollInterval: cfg.BatchPoll,
			Timeout:      cfg.BatchTimeout,
		}, logger)
	}

	deps := &Dependencies{
		Metrics:     metrics,
		LLM:         llmClient,
		JudgeConfig: judgeConfig,
		Logger:      logger,
	}

	if cfg.PostgresHost != "" {
		db, err := database.New(ctx, database.Config{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			return nil, err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		store := database.NewArtifactStore(db.Pool, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		deps.Store = store
		deps.closers = append(deps.closers, db.Close)
	}

	deps.Executor = executor.NewExecutor(components, executor.Config{
		PluginName:      cfg.PluginName,
		DetectionMode:   judgeConfig.Detection.Mode,
		AggregateMethod: judgeConfig.Judge.AggregateMethod,
		Model:           judgeModel(judgeConfig, cfg),
		Concurrency:     cfg.Concurrency,
		BatchThreshold:  cfg.BatchThreshold,
		ForceSync:       cfg.ForceSync,
	}, logger)

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Int("num_samples", numSamples).
		Int("concurrency", cfg.Concurrency).
		Bool("batch_enabled", components.Batch != nil).
		Bool("store_enabled", deps.Store != nil).
		Msg("Dependencies wired")

	return deps, nil
}

// StreamConfig maps the Redis settings onto the stream backend config.
func StreamConfig(cfg *Config) *stream.Config {
	rc := redis.NewConfig(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisStream, cfg.RedisGroup, cfg.RedisConsumer)
	if cfg.RedisResultTTL > 0 {
		rc.ResultTTL = cfg.RedisResultTTL
	}
	if cfg.RedisClaimIdle > 0 {
		rc.ClaimMinIdle = cfg.RedisClaimIdle
	}
	return &stream.Config{
		Provider:    stream.ProviderRedis,
		RedisConfig: rc,
	}
}

func CreateLLMClient(ctx context.Context, cfg *Config) (llm.LLMClient, error) {
	switch cfg.DefaultProvider {
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
	case "bedrock", "":
		return bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.DefaultProvider)
	}
}

func judgeModel(jc *config.JudgeConfig, cfg *Config) string {
	if jc.Judge.Model.ID != "" {
		return jc.Judge.Model.ID
	}
	if cfg.DefaultProvider == "openai" {
		return cfg.OpenAIModelID
	}
	return cfg.ClaudeModelID
}
