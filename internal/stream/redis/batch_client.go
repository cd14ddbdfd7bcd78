package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrJobNotFound = errors.New("batch job not found")

// BatchClient implements llm.BatchClient on top of a Redis stream. Requests
// are fanned out to workers reading the stream through a consumer group.
type BatchClient struct {
	client *redis.Client
	cfg    *Config
	logger *zerolog.Logger
}

func NewBatchClient(client *redis.Client, cfg *Config, logger *zerolog.Logger) *BatchClient {
	return &BatchClient{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (c *BatchClient) Submit(ctx context.Context, requests []llm.BatchRequest) (string, error) {
	if len(requests) == 0 {
		return "", fmt.Errorf("no requests to submit")
	}

	jobID := uuid.NewString()
	payloads := make([]string, len(requests))
	for i, req := range requests {
		p, err := encodeRequest(jobID, req)
		if err != nil {
			return "", err
		}
		payloads[i] = p
	}

	n := len(requests)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, jobKey(jobID),
			fieldTotal, n,
			fieldProcessing, n,
			fieldSucceeded, 0,
			fieldErrored, 0,
		)
		pipe.Expire(ctx, jobKey(jobID), c.cfg.ResultTTL)
		for _, p := range payloads {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: c.cfg.Stream,
				Values: map[string]any{"payload": p},
			})
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to enqueue batch: %w", err)
	}

	c.logger.Info().
		Str("job_id", jobID).
		Str("stream", c.cfg.Stream).
		Int("requests", n).
		Msg("Batch enqueued")

	return jobID, nil
}

func (c *BatchClient) PollStatus(ctx context.Context, jobID string) (llm.BatchCounts, error) {
	fields, err := c.client.HGetAll(ctx, jobKey(jobID)).Result()
	if err != nil {
		return llm.BatchCounts{}, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}
	if len(fields) == 0 {
		return llm.BatchCounts{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	return parseCounts(fields)
}

func (c *BatchClient) FetchResults(ctx context.Context, jobID string) (map[string]llm.BatchResult, error) {
	fields, err := c.client.HGetAll(ctx, resultsKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read results of job %s: %w", jobID, err)
	}
	return parseResults(fields)
}
