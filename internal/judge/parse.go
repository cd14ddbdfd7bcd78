package judge

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/povarna/generative-ai-agents/trigger-eval/internal/models"
)

var (
	jsonObjectPattern    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

	validate = validator.New()
)

// ParseResponse extracts and validates a JudgeResponse from model output
// that may be wrapped in markdown fences or surrounded by prose.
func ParseResponse(content string) (models.JudgeResponse, error) {
	raw := stripMarkdownCodeBlock(content)
	if !strings.HasPrefix(raw, "{") {
		raw = jsonObjectPattern.FindString(raw)
	}
	if raw == "" {
		return models.JudgeResponse{}, fmt.Errorf("no JSON object in judge response")
	}
	raw = trailingCommaPattern.ReplaceAllString(raw, "$1")

	var resp models.JudgeResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return models.JudgeResponse{}, fmt.Errorf("failed to deserialize judge response: %w", err)
	}

	resp.Error = ""
	resp.ErrorKind = ""
	resp.CostUSD = 0

	if err := validate.Struct(resp); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s=%v (%s)", fe.Field(), fe.Value(), fe.Tag()))
			}
			return models.JudgeResponse{}, fmt.Errorf("invalid judge response: %s", strings.Join(fields, ", "))
		}
		return models.JudgeResponse{}, fmt.Errorf("invalid judge response: %w", err)
	}

	if resp.Issues == nil {
		resp.Issues = []string{}
	}
	return resp, nil
}

// ErrorResponse is the zero-score sample recorded for a failed judge call.
func ErrorResponse(kind models.JudgeErrorKind, err error) models.JudgeResponse {
	msg := fmt.Sprintf("%s: %v", kind, err)
	return models.JudgeResponse{
		QualityScore:      0,
		ResponseRelevance: 0,
		TriggerAccuracy:   models.AccuracyIncorrect,
		Issues:            []string{msg},
		Summary:           "Judgment unavailable",
		Error:             msg,
		ErrorKind:         kind,
	}
}

// stripMarkdownCodeBlock removes markdown code block formatting if present
func stripMarkdownCodeBlock(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		firstNewline := strings.Index(content, "\n")
		if firstNewline == -1 {
			return content
		}

		closingBackticks := strings.LastIndex(content, "```")
		if closingBackticks == -1 || closingBackticks <= firstNewline {
			return content
		}

		content = strings.TrimSpace(content[firstNewline+1 : closingBackticks])
	}

	return content
}
