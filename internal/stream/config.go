package stream

import "github.com/povarna/generative-ai-agents/trigger-eval/internal/stream/redis"

const ProviderRedis = "redis"

type Config struct {
	Provider    string // only redis today
	RedisConfig *redis.Config
}
