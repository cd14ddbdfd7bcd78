package gpt

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Client struct {
	Client  openai.Client
	ModelID string
}

// NewClient builds an OpenAI chat client. Transport retries are delegated to
// the SDK.
func NewClient(apiKey string, model string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	}, opts...)

	return &Client{
		Client:  openai.NewClient(opts...),
		ModelID: model,
	}, nil
}
