package stream

import (
	"context"
	"fmt"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	redisconn "github.com/povarna/generative-ai-agents/trigger-eval/internal/redis"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/stream/redis"
	"github.com/rs/zerolog"
)

const connectRetries = 5

// NewBatchClient returns the submitting side of the stream batch backend.
func NewBatchClient(ctx context.Context, cfg *Config, logger *zerolog.Logger) (llm.BatchClient, error) {
	rc, err := redisConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := redisconn.Connect(ctx, redisconn.Options{Addr: rc.Addr, Password: rc.Password, MaxRetries: connectRetries}, logger)
	if err != nil {
		return nil, err
	}
	return redis.NewBatchClient(client, rc, logger), nil
}

// NewWorker returns the consuming side that fulfils batch requests with
// the given LLM client.
func NewWorker(ctx context.Context, cfg *Config, llmClient llm.LLMClient, logger *zerolog.Logger) (StreamConsumer, error) {
	rc, err := redisConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := redisconn.Connect(ctx, redisconn.Options{Addr: rc.Addr, Password: rc.Password, MaxRetries: connectRetries}, logger)
	if err != nil {
		return nil, err
	}
	return redis.NewWorker(client, rc, llmClient, logger), nil
}

func redisConfig(cfg *Config) (*redis.Config, error) {
	// If provider is empty, fallback to the default configuration.
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderRedis
	}

	switch provider {
	case ProviderRedis:
		if cfg.RedisConfig == nil {
			return nil, fmt.Errorf("redis config required")
		}
		return cfg.RedisConfig, nil
	default:
		return nil, fmt.Errorf("unsupported stream provider: %s", cfg.Provider)
	}
}
