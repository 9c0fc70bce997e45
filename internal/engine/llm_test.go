package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", "## Summary\n- point", "## Summary\n- point"},
		{"plain fences", "```\n- point\n```", "- point"},
		{"markdown fence", "```markdown\n## Summary\n```", "## Summary"},
		{"md fence", "```md\ntext\n```", "text"},
		{"surrounding whitespace", "  \n```\nbody\n```\n  ", "body"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummarizeWithoutClient(t *testing.T) {
	saved := cfg.LLMClient
	cfg.LLMClient = nil
	defer func() { cfg.LLMClient = saved }()

	_, err := Summarize(context.Background(), "some transcript", StyleBullets, "")
	if !errors.Is(err, ErrNoLLM) {
		t.Errorf("err = %v, want ErrNoLLM", err)
	}
}

func TestSummaryUserPrompt(t *testing.T) {
	p := summaryUserPrompt("the transcript body", StyleBullets, "")
	if !strings.Contains(p, styleInstructions[StyleBullets]) {
		t.Error("missing bullets instruction")
	}
	if !strings.Contains(p, "same language as the transcript") {
		t.Error("missing default language line")
	}
	if !strings.Contains(p, "the transcript body") {
		t.Error("missing transcript text")
	}

	p = summaryUserPrompt("text", StyleShort, "de")
	if !strings.Contains(p, `"de"`) {
		t.Error("missing explicit language")
	}

	// Unknown style falls back to detailed.
	p = summaryUserPrompt("text", SummaryStyle("nope"), "")
	if !strings.Contains(p, styleInstructions[StyleDetailed]) {
		t.Error("unknown style should fall back to detailed instructions")
	}
}
