package judge

import (
	"context"
	"errors"

	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

var ErrJudgeTimeout = errors.New("judge call timed out")

// Judge produces one judgment sample. Failures are returned as error
// responses, never as Go errors, so a sample always exists.
type Judge interface {
	Evaluate(ctx context.Context, data PromptData) models.JudgeResponse
}
