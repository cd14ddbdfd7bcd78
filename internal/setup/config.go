package setup

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string

	JudgeConfigPath string
	PluginName      string
	LogLevel        string

	// NumSamples overrides judge.num_samples from the YAML when positive.
	NumSamples     int
	Concurrency    int
	JudgeRate      float64
	CallTimeout    time.Duration
	BatchThreshold int
	BatchTimeout   time.Duration
	BatchPoll      time.Duration
	ForceSync      bool

	RedisAddr      string
	RedisPassword  string
	RedisStream    string
	RedisGroup     string
	RedisConsumer  string
	RedisResultTTL time.Duration
	RedisClaimIdle time.Duration

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),

		JudgeConfigPath: getEnv("JUDGE_CONFIG_PATH", "configs/judge.yaml"),
		PluginName:      getEnv("PLUGIN_NAME", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		NumSamples:     getEnvInt("JUDGE_NUM_SAMPLES", 0),
		Concurrency:    getEnvInt("EVAL_CONCURRENCY", 5),
		JudgeRate:      getEnvFloat("JUDGE_RATE_PER_SECOND", 0),
		CallTimeout:    getEnvDuration("JUDGE_CALL_TIMEOUT", 60*time.Second),
		BatchThreshold: getEnvInt("BATCH_THRESHOLD", 50),
		BatchTimeout:   getEnvDuration("BATCH_TIMEOUT", time.Hour),
		BatchPoll:      getEnvDuration("BATCH_POLL_INTERVAL", 10*time.Second),
		ForceSync:      getEnvBool("FORCE_SYNC", false),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisStream:    getEnv("REDIS_STREAM", ""),
		RedisGroup:     getEnv("REDIS_GROUP", ""),
		RedisConsumer:  getEnv("REDIS_CONSUMER", defaultConsumerName()),
		RedisResultTTL: getEnvDuration("REDIS_RESULT_TTL", 24*time.Hour),
		RedisClaimIdle: getEnvDuration("REDIS_CLAIM_MIN_IDLE", 2*time.Minute),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", "trigger_eval"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

func defaultConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "worker-1"
	}
	return host
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
