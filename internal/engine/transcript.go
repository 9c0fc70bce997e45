package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Segment is one timestamped piece of a transcript. Offsets and durations
// are in milliseconds.
type Segment struct {
	Text     string `json:"text"`
	Offset   int64  `json:"offset"`
	Duration int64  `json:"duration"`
}

// Transcript is the canonical normalized form every provider response is
// reduced to, whether the upstream shape was chunked or flat text.
type Transcript struct {
	Segments       []Segment `json:"segments"`
	Lang           string    `json:"lang,omitempty"`
	AvailableLangs []string  `json:"availableLangs,omitempty"`
	Source         string    `json:"source,omitempty"` // provider | innertube | page
}

var (
	bracketNoiseRe = regexp.MustCompile(`\[(?:Music|Applause|Laughter|Cheering|Inaudible|__)\]`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
)

// CleanSegmentText collapses whitespace and strips non-speech markers
// ([Music], [Applause], ...) that auto-captions insert.
func CleanSegmentText(s string) string {
	s = bracketNoiseRe.ReplaceAllString(s, "")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// FlatTranscript wraps plain text as a single segment at offset 0.
func FlatTranscript(text, lang string) Transcript {
	text = CleanSegmentText(text)
	if text == "" {
		return Transcript{Lang: lang}
	}
	return Transcript{
		Segments: []Segment{{Text: text}},
		Lang:     lang,
	}
}

// Empty reports whether the transcript has no usable text. A transcript
// whose segments are all whitespace counts as absent.
func (t Transcript) Empty() bool {
	for _, s := range t.Segments {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

// PlainText joins all segment text with single spaces.
func (t Transcript) PlainText() string {
	var sb strings.Builder
	for _, s := range t.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// Timestamped renders the transcript one segment per line with a leading
// [mm:ss] stamp (hours shown only past the first hour).
func (t Transcript) Timestamped() string {
	var sb strings.Builder
	for _, s := range t.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%s] %s", FormatOffset(s.Offset), text)
	}
	return sb.String()
}

// FormatOffset renders a millisecond offset as mm:ss or h:mm:ss.
func FormatOffset(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
