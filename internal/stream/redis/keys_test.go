package redis

import (
	"testing"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	payload, err := encodeRequest("job-1", llm.BatchRequest{
		CustomID: "commit_s0",
		Request:  llm.CompletionRequest{UserPrompt: "judge this", MaxTokens: 512},
	})
	require.NoError(t, err)

	msg, err := decodeRequest(payload)
	require.NoError(t, err)
	assert.Equal(t, "job-1", msg.JobID)
	assert.Equal(t, "commit_s0", msg.Request.CustomID)
	assert.Equal(t, 512, msg.Request.Request.MaxTokens)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := decodeRequest("not json")
	assert.Error(t, err)

	_, err = decodeRequest(`{"job_id":"job-1","request":{}}`)
	assert.Error(t, err)
}

func TestParseCounts(t *testing.T) {
	counts, err := parseCounts(map[string]string{
		"total":      "3",
		"processing": "1",
		"succeeded":  "1",
		"errored":    "1",
	})
	require.NoError(t, err)
	assert.Equal(t, llm.BatchCounts{Processing: 1, Succeeded: 1, Errored: 1}, counts)
	assert.False(t, counts.Done())

	_, err = parseCounts(map[string]string{"processing": "many"})
	assert.Error(t, err)
}

func TestParseResults(t *testing.T) {
	results, err := parseResults(map[string]string{
		"a_s0": `{"response":{"text":"{}","usage":{"input_tokens":10,"output_tokens":2}}}`,
		"a_s1": `{"error":"throttled"}`,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a_s0", results["a_s0"].CustomID)
	assert.Equal(t, 10, results["a_s0"].Response.Usage.InputTokens)
	assert.Equal(t, "throttled", results["a_s1"].Error)

	_, err = parseResults(map[string]string{"bad": "{"})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "job:abc", jobKey("abc"))
	assert.Equal(t, "job:abc:results", resultsKey("abc"))
}
