package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

type claudeMessageRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float64         `json:"temperature"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

type claudeMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string      `json:"stop_reason"`
	Usage      claudeUsage `json:"usage"`
}

var anthropicVersion = "bedrock-2023-05-31"

// jsonPrefill is sent as the start of the assistant turn so the model
// continues a JSON object instead of writing prose.
const jsonPrefill = "{"

func (c *Client) CreateCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return c.invokeModelWithRetry(ctx, request, "")
}

func (c *Client) CreateStructuredCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	response, err := c.invokeModelWithRetry(ctx, request, jsonPrefill)
	if err != nil {
		return nil, err
	}
	response.Text = jsonPrefill + response.Text
	return response, nil
}

func (c *Client) invokeModel(ctx context.Context, request llm.CompletionRequest, prefill string) (*llm.CompletionResponse, error) {
	modelID := request.Model
	if modelID == "" {
		modelID = c.ModelID
	}

	messages := []claudeMessage{{Role: "user", Content: request.UserPrompt}}
	if prefill != "" {
		messages = append(messages, claudeMessage{Role: "assistant", Content: prefill})
	}

	payload := claudeMessageRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        request.MaxTokens,
		Temperature:      request.Temperature,
		System:           request.SystemPrompt,
		Messages:         messages,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to serialize claude request: %w", err)
	}

	output, err := c.Client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, llm.ClassifyError(fmt.Errorf("unable to invoke claude model: %w", err))
	}

	var response claudeMessageResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bedrock response: %w", err)
	}

	var content string
	for _, block := range response.Content {
		if block.Type == "text" || block.Type == "" {
			content += block.Text
		}
	}

	return &llm.CompletionResponse{
		Text:       content,
		StopReason: response.StopReason,
		Model:      modelID,
		Usage: models.TokenUsage{
			InputTokens:              response.Usage.InputTokens,
			OutputTokens:             response.Usage.OutputTokens,
			CacheReadInputTokens:     response.Usage.CacheReadInputTokens,
			CacheCreationInputTokens: response.Usage.CacheCreationInputTokens,
		},
	}, nil
}

func (c *Client) invokeModelWithRetry(ctx context.Context, request llm.CompletionRequest, prefill string) (*llm.CompletionResponse, error) {
	if request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Timeout)
		defer cancel()
	}

	attempts := max(c.MaxRetries, 1)
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		response, err := c.invokeModel(ctx, request, prefill)
		if err == nil {
			return response, nil
		}

		lastErr = err

		if !llm.IsTransient(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}

		delay := calculateBackoff(attempt, c.InitialDelay, c.MaxDelay)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			continue
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", attempts, lastErr)
}

func calculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(2, float64(attempt))

	if backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.2 * (2*rand.Float64() - 1) // between -20% and +20%
	backoff += jitter

	return time.Duration(backoff)
}
