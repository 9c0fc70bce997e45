package sources

import (
	"encoding/json"
	"encoding/xml"
	"testing"
)

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`{"engagementPanels":[{"getTranscriptEndpoint":{"params":"CgtkUXc0dzlXZ1hjUQ%3D%3D"}}]}`)
	token, err := extractTranscriptToken(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// URL-encoded params come back decoded.
	if token != "CgtkUXc0dzlXZ1hjUQ==" {
		t.Errorf("token = %q", token)
	}

	if _, err := extractTranscriptToken([]byte(`{"engagementPanels":[]}`)); err == nil {
		t.Error("expected error when endpoint is missing")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple object", `{"a":1}`, `{"a":1}`},
		{"trailing script", `{"a":{"b":2}};var x = 1;`, `{"a":{"b":2}}`},
		{"braces in strings", `{"a":"}{","b":1};`, `{"a":"}{","b":1}`},
		{"escaped quote in string", `{"a":"say \"}\""}rest`, `{"a":"say \"}\""}`},
		{"not an object", `[1,2]`, ""},
		{"unbalanced", `{"a":1`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractJSON([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPickBestTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "https://yt/api/timedtext?lang=en", LanguageCode: "en"}
	autoEN := captionTrack{BaseURL: "https://yt/api/timedtext?lang=en&asr", LanguageCode: "en", Kind: "asr"}
	manualDE := captionTrack{BaseURL: "https://yt/api/timedtext?lang=de", LanguageCode: "de"}
	blocked := captionTrack{BaseURL: "https://yt/api/timedtext?lang=en&exp=xpe", LanguageCode: "en"}
	autoES := captionTrack{BaseURL: "https://yt/api/timedtext?lang=es", LanguageCode: "es", Kind: "asr"}

	t.Run("manual beats auto in same language", func(t *testing.T) {
		got, ok := pickBestTrack([]captionTrack{autoEN, manualEN}, []string{"en"})
		if !ok || got != manualEN {
			t.Errorf("got %+v, ok=%v", got, ok)
		}
	})

	t.Run("preferred language order", func(t *testing.T) {
		got, ok := pickBestTrack([]captionTrack{manualEN, manualDE}, []string{"de", "en"})
		if !ok || got != manualDE {
			t.Errorf("got %+v, ok=%v", got, ok)
		}
	})

	t.Run("auto track when no manual match", func(t *testing.T) {
		got, ok := pickBestTrack([]captionTrack{autoEN, manualDE}, []string{"en"})
		if !ok || got != autoEN {
			t.Errorf("got %+v, ok=%v", got, ok)
		}
	})

	t.Run("english fallback", func(t *testing.T) {
		got, ok := pickBestTrack([]captionTrack{autoES, manualEN}, []string{"fr"})
		if !ok || got != manualEN {
			t.Errorf("got %+v, ok=%v", got, ok)
		}
	})

	t.Run("potoken tracks skipped", func(t *testing.T) {
		got, ok := pickBestTrack([]captionTrack{blocked, manualDE}, []string{"en"})
		if !ok || got != manualDE {
			t.Errorf("got %+v, ok=%v", got, ok)
		}
	})

	t.Run("all blocked", func(t *testing.T) {
		if _, ok := pickBestTrack([]captionTrack{blocked}, []string{"en"}); ok {
			t.Error("expected ok=false when every track needs a PoToken")
		}
	})
}

func TestParseTranscriptSegments(t *testing.T) {
	raw := `{
		"actions": [{
			"updateEngagementPanelAction": {
				"content": {"transcriptRenderer": {"content": {"transcriptSearchPanelRenderer": {"body": {"transcriptSegmentListRenderer": {
					"initialSegments": [
						{"transcriptSegmentRenderer": {"startMs": "0", "endMs": "2100", "snippet": {"runs": [{"text": "hey"}, {"text": "everyone"}]}}},
						{"transcriptSegmentRenderer": {"startMs": "2100", "endMs": "2600", "snippet": {"runs": [{"text": "[Music]"}]}}},
						{"transcriptSegmentRenderer": {"startMs": "2600", "endMs": "5000", "snippet": {"runs": [{"text": "welcome back"}]}}},
						{}
					]
				}}}}}}
			}
		}]
	}`
	var resp ytGetTranscriptResp
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	segs := parseTranscriptSegments(resp)
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2 (noise and empty renderers dropped)", len(segs))
	}
	if segs[0].Text != "hey everyone" || segs[0].Offset != 0 || segs[0].Duration != 2100 {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Text != "welcome back" || segs[1].Offset != 2600 || segs[1].Duration != 2400 {
		t.Errorf("segment 1 = %+v", segs[1])
	}
}

func TestTimedTextParsing(t *testing.T) {
	raw := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.12" dur="2.5">first &amp; foremost</text>
  <text start="2.62" dur="1.88">second line</text>
</transcript>`

	var tt ytTimedText
	if err := xml.Unmarshal([]byte(raw), &tt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(tt.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(tt.Lines))
	}
	if tt.Lines[0].Start != "0.12" || tt.Lines[0].Dur != "2.5" {
		t.Errorf("line 0 attrs = %+v", tt.Lines[0])
	}
	if tt.Lines[0].Text != "first & foremost" {
		t.Errorf("line 0 text = %q", tt.Lines[0].Text)
	}
}

func TestGenerateVisitorData(t *testing.T) {
	a := generateVisitorData()
	if len(a) != 11 {
		t.Errorf("length = %d, want 11", len(a))
	}
}
