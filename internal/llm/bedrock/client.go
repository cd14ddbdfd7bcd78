package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// invoker is the slice of the bedrock runtime API the client uses.
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type Client struct {
	Client       invoker
	ModelID      string
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func NewClient(ctx context.Context, region string, modelID string) (*Client, error) {
	if modelID == "" {
		return nil, fmt.Errorf("bedrock model ID is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Client{
		Client:       bedrockruntime.NewFromConfig(cfg),
		ModelID:      modelID,
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     12 * time.Second,
	}, nil
}
