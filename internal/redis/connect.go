package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Options struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
}

// Connect pings the server until it answers, backing off 2^attempt seconds
// between attempts.
func Connect(ctx context.Context, opts Options, logger *zerolog.Logger) (*redis.Client, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}

	client := redis.NewClient(&redis.Options{
		Addr:            opts.Addr,
		Password:        opts.Password,
		DB:              opts.DB,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	var err error
	for i := range opts.MaxRetries {
		if i > 0 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			logger.Info().Dur("backoff", backoff).Msg("Waiting before Redis retry")
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		logger.Info().
			Str("addr", opts.Addr).
			Int("attempt", i+1).
			Int("max_retries", opts.MaxRetries).
			Msg("Connecting to Redis")

		err = client.Ping(ctx).Err()
		if err == nil {
			logger.Info().Int("attempts_needed", i+1).Msg("Redis connected")
			return client, nil
		}

		logger.Warn().Err(err).Int("attempt", i+1).Msg("Redis ping failed")
	}

	_ = client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", opts.MaxRetries, err)
}
