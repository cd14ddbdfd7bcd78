package redis

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
)

// Job counters live in the "job:<id>" hash, results in "job:<id>:results"
// keyed by custom id.
const (
	fieldProcessing = "processing"
	fieldSucceeded  = "succeeded"
	fieldErrored    = "errored"
	fieldTotal      = "total"
)

func jobKey(jobID string) string {
	return "job:" + jobID
}

func resultsKey(jobID string) string {
	return "job:" + jobID + ":results"
}

// requestMessage is the payload of one stream entry.
type requestMessage struct {
	JobID   string           `json:"job_id"`
	Request llm.BatchRequest `json:"request"`
}

func encodeRequest(jobID string, req llm.BatchRequest) (string, error) {
	b, err := json.Marshal(requestMessage{JobID: jobID, Request: req})
	if err != nil {
		return "", fmt.Errorf("failed to encode request %s: %w", req.CustomID, err)
	}
	return string(b), nil
}

func decodeRequest(payload string) (requestMessage, error) {
	var msg requestMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return msg, err
	}
	if msg.JobID == "" || msg.Request.CustomID == "" {
		return msg, fmt.Errorf("message missing job_id or custom_id")
	}
	return msg, nil
}

func parseCounts(fields map[string]string) (llm.BatchCounts, error) {
	var counts llm.BatchCounts
	for name, target := range map[string]*int{
		fieldProcessing: &counts.Processing,
		fieldSucceeded:  &counts.Succeeded,
		fieldErrored:    &counts.Errored,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return counts, fmt.Errorf("invalid %s count %q: %w", name, raw, err)
		}
		*target = n
	}
	return counts, nil
}

func parseResults(fields map[string]string) (map[string]llm.BatchResult, error) {
	results := make(map[string]llm.BatchResult, len(fields))
	for id, raw := range fields {
		var r llm.BatchResult
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("invalid result for %s: %w", id, err)
		}
		r.CustomID = id
		results[id] = r
	}
	return results, nil
}
