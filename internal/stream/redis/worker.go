package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Worker consumes judge requests from the stream, calls the LLM and records
// each outcome against its batch job.
type Worker struct {
	client *redis.Client
	cfg    *Config
	llm    llm.LLMClient
	logger *zerolog.Logger
}

func NewWorker(client *redis.Client, cfg *Config, llmClient llm.LLMClient, logger *zerolog.Logger) *Worker {
	return &Worker{
		client: client,
		cfg:    cfg,
		llm:    llmClient,
		logger: logger,
	}
}

func (w *Worker) Setup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.cfg.Stream, w.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info().
		Str("stream", w.cfg.Stream).
		Str("group", w.cfg.Group).
		Str("consumer", w.cfg.ConsumerName).
		Msg("Worker started")

	var lastClaim time.Time
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if time.Since(lastClaim) >= w.cfg.ClaimInterval {
			w.reclaim(ctx)
			lastClaim = time.Now()
		}

		streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    w.cfg.Group,
			Consumer: w.cfg.ConsumerName,
			Streams:  []string{w.cfg.Stream, ">"},
			Count:    1,
			Block:    2 * time.Second,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error().Err(err).Msg("Failed to read from stream")
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				w.process(ctx, msg)
			}
		}
	}
}

// reclaim takes over entries left pending by consumers that stopped before
// recording a result, including this one after a restart.
func (w *Worker) reclaim(ctx context.Context) int {
	claimed := 0
	start := "0-0"
	for {
		msgs, next, err := w.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   w.cfg.Stream,
			Group:    w.cfg.Group,
			Consumer: w.cfg.ConsumerName,
			MinIdle:  w.cfg.ClaimMinIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Error().Err(err).Msg("Failed to claim pending entries")
			}
			return claimed
		}

		for _, msg := range msgs {
			if ctx.Err() != nil {
				return claimed
			}
			w.process(ctx, msg)
			claimed++
		}

		if next == "0-0" || next == "" {
			break
		}
		start = next
	}

	if claimed > 0 {
		w.logger.Info().Int("claimed", claimed).Msg("Reclaimed pending entries")
	}
	return claimed
}

func (w *Worker) Stop() error {
	return nil
}

func (w *Worker) process(ctx context.Context, msg redis.XMessage) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		w.logger.Error().Str("id", msg.ID).Msg("Missing payload field")
		w.ack(ctx, msg.ID)
		return
	}

	req, err := decodeRequest(payload)
	if err != nil {
		w.logger.Error().Err(err).Str("id", msg.ID).Msg("Failed to decode message")
		w.ack(ctx, msg.ID)
		return
	}

	result := w.complete(ctx, req.Request)
	if ctx.Err() != nil {
		// Left pending; reclaim picks it up once idle.
		return
	}

	if err := w.record(ctx, req.JobID, result); err != nil {
		w.logger.Error().
			Err(err).
			Str("job_id", req.JobID).
			Str("custom_id", result.CustomID).
			Msg("Failed to record result")
		return
	}

	w.logger.Debug().
		Str("job_id", req.JobID).
		Str("custom_id", result.CustomID).
		Bool("errored", result.Error != "").
		Msg("Request processed")

	w.ack(ctx, msg.ID)
}

func (w *Worker) complete(ctx context.Context, req llm.BatchRequest) llm.BatchResult {
	result := llm.BatchResult{CustomID: req.CustomID}

	var (
		resp *llm.CompletionResponse
		err  error
	)
	if structured, ok := w.llm.(llm.StructuredCompleter); ok {
		resp, err = structured.CreateStructuredCompletion(ctx, req.Request)
	} else {
		resp, err = w.llm.CreateCompletion(ctx, req.Request)
	}
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Response = resp
	return result
}

// recordScript stores the result and moves the job counters in one step, so
// a redelivered message never moves them a second time and a stored result
// never leaves the counters behind.
var recordScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('HINCRBY', KEYS[2], ARGV[3], -1)
redis.call('HINCRBY', KEYS[2], ARGV[4], 1)
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

func (w *Worker) record(ctx context.Context, jobID string, result llm.BatchResult) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return err
	}

	outcome := fieldSucceeded
	if result.Error != "" {
		outcome = fieldErrored
	}
	return recordScript.Run(ctx, w.client,
		[]string{resultsKey(jobID), jobKey(jobID)},
		result.CustomID, encoded, fieldProcessing, outcome, w.cfg.ResultTTL.Milliseconds(),
	).Err()
}

func (w *Worker) ack(ctx context.Context, msgID string) {
	if err := w.client.XAck(ctx, w.cfg.Stream, w.cfg.Group, msgID).Err(); err != nil {
		w.logger.Error().Err(err).Str("id", msgID).Msg("Failed to ACK message")
	}
}
