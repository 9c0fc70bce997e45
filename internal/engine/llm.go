package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoLLM is returned when summarization is attempted without a configured client.
var ErrNoLLM = errors.New("llm client not configured")

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```md")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Summarize generates a summary of transcript text in the requested style.
// lang selects the output language ("" = same as the transcript).
func Summarize(ctx context.Context, text string, style SummaryStyle, lang string) (string, error) {
	if cfg.LLMClient == nil {
		return "", ErrNoLLM
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("empty transcript text")
	}
	if cfg.MaxTranscriptChars > 0 && len(text) > cfg.MaxTranscriptChars {
		text = Truncate(text, cfg.MaxTranscriptChars) + "..."
	}

	metrics.LLMCalls.Add(1)
	resp, err := cfg.LLMClient.Complete(ctx, summarySystemPrompt, summaryUserPrompt(text, style, lang))
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", fmt.Errorf("llm: %w", err)
	}

	out := stripFences(resp)
	if out == "" {
		metrics.LLMErrors.Add(1)
		return "", errors.New("llm returned empty summary")
	}
	return out, nil
}
