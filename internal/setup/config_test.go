package setup

import (
	"context"
	"testing"
	"time"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"BATCH_THRESHOLD", "JUDGE_CALL_TIMEOUT", "FORCE_SYNC", "EVAL_CONCURRENCY", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, 50, cfg.BatchThreshold)
	assert.Equal(t, 60*time.Second, cfg.CallTimeout)
	assert.False(t, cfg.ForceSync)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("BATCH_THRESHOLD", "0")
	t.Setenv("JUDGE_CALL_TIMEOUT", "5s")
	t.Setenv("FORCE_SYNC", "true")
	t.Setenv("JUDGE_RATE_PER_SECOND", "2.5")
	t.Setenv("JUDGE_NUM_SAMPLES", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, 0, cfg.BatchThreshold)
	assert.Equal(t, 5*time.Second, cfg.CallTimeout)
	assert.True(t, cfg.ForceSync)
	assert.Equal(t, 2.5, cfg.JudgeRate)
	assert.Equal(t, 0, cfg.NumSamples)
}

func TestStreamConfig(t *testing.T) {
	cfg := &Config{RedisAddr: "localhost:6379", RedisConsumer: "c1", RedisResultTTL: time.Minute, RedisClaimIdle: 5 * time.Second}

	sc := StreamConfig(cfg)

	require.NotNil(t, sc.RedisConfig)
	assert.Equal(t, "judge-requests", sc.RedisConfig.Stream)
	assert.Equal(t, "judge-workers", sc.RedisConfig.Group)
	assert.Equal(t, time.Minute, sc.RedisConfig.ResultTTL)
	assert.Equal(t, 5*time.Second, sc.RedisConfig.ClaimMinIdle)
}

func TestCreateLLMClient_Errors(t *testing.T) {
	_, err := CreateLLMClient(context.Background(), &Config{DefaultProvider: "cohere"})
	assert.ErrorContains(t, err, "unsupported LLM provider")

	_, err = CreateLLMClient(context.Background(), &Config{DefaultProvider: "openai"})
	assert.Error(t, err)
}

func TestJudgeModel(t *testing.T) {
	jc := &config.JudgeConfig{}
	assert.Equal(t, "gpt-4o", judgeModel(jc, &Config{DefaultProvider: "openai", OpenAIModelID: "gpt-4o"}))
	assert.Equal(t, "claude", judgeModel(jc, &Config{DefaultProvider: "bedrock", ClaudeModelID: "claude"}))

	jc.Judge.Model.ID = "pinned"
	assert.Equal(t, "pinned", judgeModel(jc, &Config{ClaudeModelID: "claude"}))
}
