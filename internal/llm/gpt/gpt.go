package gpt

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/llm"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

func (c *Client) CreateCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return c.complete(ctx, request, false)
}

func (c *Client) CreateStructuredCompletion(ctx context.Context, request llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return c.complete(ctx, request, true)
}

func (c *Client) complete(ctx context.Context, request llm.CompletionRequest, jsonOnly bool) (*llm.CompletionResponse, error) {
	if request.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, request.Timeout)
		defer cancel()
	}

	modelID := request.Model
	if modelID == "" {
		modelID = c.ModelID
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if request.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(request.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(request.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		MaxCompletionTokens: openai.Int(int64(request.MaxTokens)),
		Temperature:         openai.Float(request.Temperature),
		Model:               openai.ChatModel(modelID),
	}
	if jsonOnly {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	output, err := c.Client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, llm.ClassifyError(fmt.Errorf("unable to invoke gpt model: %w", err))
	}

	if len(output.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := output.Choices[0]
	cached := int(output.Usage.PromptTokensDetails.CachedTokens)
	return &llm.CompletionResponse{
		Text:       choice.Message.Content,
		StopReason: fmt.Sprint(choice.FinishReason),
		Model:      modelID,
		Usage: models.TokenUsage{
			InputTokens:          int(output.Usage.PromptTokens) - cached,
			OutputTokens:         int(output.Usage.CompletionTokens),
			CacheReadInputTokens: cached,
		},
	}, nil
}
