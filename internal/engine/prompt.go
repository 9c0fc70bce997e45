package engine

import "fmt"

// LLM prompt templates — data only, no logic.

const summarySystemPrompt = `You are a video summarization assistant. You receive the raw
transcript of a video (auto-captions: expect missing punctuation, filler words, and
transcription mistakes) and produce a faithful summary of what is actually said.

Rules:
- Summarize ONLY what the transcript contains. Do NOT invent facts, names, or numbers.
- Ignore sponsor reads, like/subscribe requests, and channel self-promotion.
- Keep concrete details: numbers, names, versions, steps, conclusions.
- Plain markdown only: headings (##), bold, and "- " bullets. No code fences, no tables.`

// styleInstructions maps each summary style to its shape instruction.
var styleInstructions = map[SummaryStyle]string{
	StyleBullets:  "Format: 5-10 bullet points, each a complete sentence covering one key point. No intro, no outro.",
	StyleShort:    "Format: a single paragraph of 2-4 sentences. No headings, no bullets.",
	StyleDetailed: "Format: a one-sentence overview, then 2-4 short titled sections covering the main topics in order, then a final takeaway line.",
}

// summaryUserPrompt builds the user prompt for a transcript summary request.
func summaryUserPrompt(text string, style SummaryStyle, lang string) string {
	instr, ok := styleInstructions[style]
	if !ok {
		instr = styleInstructions[StyleDetailed]
	}

	langLine := "Write the summary in the same language as the transcript."
	if lang != "" {
		langLine = fmt.Sprintf("Write the summary in %q.", lang)
	}

	return fmt.Sprintf(`%s
%s

Transcript:
%s`, instr, langLine, text)
}
