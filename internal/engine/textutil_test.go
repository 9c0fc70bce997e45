package engine

import (
	"strings"
	"testing"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>hello</p>", "hello"},
		{"  <b>bold</b> text ", "bold text"},
		{"no tags", "no tags"},
		{"<div><span>nested</span></div>", "nested"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 3); got != "hel" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("hi", 10); got != "hi" {
		t.Errorf("got %q", got)
	}
}

func TestExtractWithRegex(t *testing.T) {
	html := `<html><head><title>  Some Page </title><script>var x=1;</script></head>
		<body><nav>menu</nav><p>actual page text</p><footer>copyright</footer></body></html>`

	title, content, err := extractWithRegex([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if title != "Some Page" {
		t.Errorf("title = %q", title)
	}
	if !strings.Contains(content, "actual page text") {
		t.Errorf("content = %q, missing body text", content)
	}
	if strings.Contains(content, "var x=1") || strings.Contains(content, "menu") || strings.Contains(content, "copyright") {
		t.Errorf("content = %q, should drop script/nav/footer blocks", content)
	}
}

func TestValidStyle(t *testing.T) {
	for _, s := range []string{"", "bullets", "short", "detailed"} {
		if !ValidStyle(s) {
			t.Errorf("ValidStyle(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"haiku", "BULLETS", "long"} {
		if ValidStyle(s) {
			t.Errorf("ValidStyle(%q) = true, want false", s)
		}
	}
}

func TestFormatMetricsListsAllCounters(t *testing.T) {
	out := FormatMetrics()
	for _, key := range []string{
		"summarize_requests", "transcript_requests", "transcript_jobs",
		"transcript_polls", "transcript_empty", "innertube_fallbacks",
		"page_fallbacks", "llm_calls", "llm_errors", "history_writes",
		"cache_hits", "cache_misses",
	} {
		if !strings.Contains(out, key+" ") {
			t.Errorf("FormatMetrics() missing %q:\n%s", key, out)
		}
	}
}
