package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/setup"
	applog "github.com/povarna/generative-ai-agents/trigger-eval/internal/setup/logger"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/stream"
	"github.com/rs/zerolog/log"
)

// The worker fulfils judge requests enqueued by the batch path.
func main() {
	_ = godotenv.Load()

	cfg := setup.LoadConfig()
	logger := applog.New("trigger-eval-worker", cfg.LogLevel)

	if cfg.RedisAddr == "" {
		logger.Fatal().Msg("REDIS_ADDR is required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	llmClient, err := setup.CreateLLMClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create LLM client")
	}

	consumer, err := stream.NewWorker(ctx, setup.StreamConfig(cfg), llmClient, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create stream worker")
	}

	if err := consumer.Setup(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to setup consumer group")
	}

	if addr := os.Getenv("WORKER_HEALTH_ADDR"); addr != "" {
		go serveHealth(ctx, addr)
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")
	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop consumer")
	}
	logger.Info().Msg("Worker stopped")
}

func serveHealth(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Str("addr", addr).Msg("Health server failed")
	}
}
