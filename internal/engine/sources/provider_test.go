package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
)

// initTestEngine points the engine at a test provider with fast polling.
func initTestEngine(t *testing.T, providerURL string) {
	t.Helper()
	engine.Init(engine.Config{
		TranscriptAPIURL: providerURL,
		TranscriptAPIKey: "test-key",
		TranscriptLangs:  []string{"en"},
		JobPollInterval:  time.Millisecond,
		JobPollBudget:    5,
		HTTPClient:       &http.Client{Timeout: 5 * time.Second},
	})
}

func TestFetchProviderTranscriptChunked(t *testing.T) {
	var gotQuery map[string]string
	var gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"url": q.Get("url"), "lang": q.Get("lang"), "text": q.Get("text")}
		gotAPIKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{
			"content": [
				{"text": "hello there", "offset": 0, "duration": 1500},
				{"text": "[Music]", "offset": 1500, "duration": 500},
				{"text": "welcome  back", "offset": 2000, "duration": 2000}
			],
			"lang": "en",
			"availableLangs": ["en", "de"]
		}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	tr, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["url"] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("url param = %q", gotQuery["url"])
	}
	if gotQuery["lang"] != "en" || gotQuery["text"] != "false" {
		t.Errorf("query = %v, want lang=en text=false", gotQuery)
	}
	if gotAPIKey != "test-key" {
		t.Errorf("x-api-key = %q, want test-key", gotAPIKey)
	}

	// Noise-only chunk is dropped, whitespace collapsed.
	if len(tr.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(tr.Segments))
	}
	if tr.Segments[1].Text != "welcome back" || tr.Segments[1].Offset != 2000 {
		t.Errorf("segment = %+v", tr.Segments[1])
	}
	if tr.Lang != "en" || len(tr.AvailableLangs) != 2 {
		t.Errorf("lang = %q, availableLangs = %v", tr.Lang, tr.AvailableLangs)
	}
	if tr.Source != "provider" {
		t.Errorf("source = %q, want provider", tr.Source)
	}
}

func TestFetchProviderTranscriptFlat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("text") != "true" {
			t.Errorf("text param = %q, want true", r.URL.Query().Get("text"))
		}
		w.Write([]byte(`{"content": "the whole transcript as one block", "lang": "en"}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	tr, err := FetchProviderTranscript(context.Background(), "https://vm.tiktok.com/ZMabcDEF1", "", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tr.Segments) != 1 {
		t.Fatalf("segments = %d, want 1 flat segment", len(tr.Segments))
	}
	if tr.Segments[0].Offset != 0 {
		t.Errorf("flat segment offset = %d, want 0", tr.Segments[0].Offset)
	}
	if tr.Segments[0].Text != "the whole transcript as one block" {
		t.Errorf("text = %q", tr.Segments[0].Text)
	}
}

func TestFetchProviderTranscriptAsyncJob(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/transcript" {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"jobId": "job-123"}`))
			return
		}
		if r.URL.Path != "/v1/transcript/job-123" {
			t.Errorf("unexpected poll path %q", r.URL.Path)
		}
		polls++
		switch polls {
		case 1:
			w.Write([]byte(`{"status": "queued"}`))
		case 2:
			w.Write([]byte(`{"status": "active"}`))
		default:
			w.Write([]byte(`{"status": "completed", "content": [{"text": "done at last", "offset": 0, "duration": 900}], "lang": "en"}`))
		}
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	tr, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if polls != 3 {
		t.Errorf("polls = %d, want 3", polls)
	}
	if len(tr.Segments) != 1 || tr.Segments[0].Text != "done at last" {
		t.Errorf("transcript = %+v", tr)
	}
}

func TestFetchProviderTranscriptJobFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/transcript" {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"jobId": "job-bad"}`))
			return
		}
		w.Write([]byte(`{"status": "failed", "error": "video is private"}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	_, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", false)
	if !errors.Is(err, errJobFailed) {
		t.Errorf("err = %v, want errJobFailed", err)
	}
}

func TestFetchProviderTranscriptPollBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/transcript" {
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"jobId": "job-slow"}`))
			return
		}
		w.Write([]byte(`{"status": "active"}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	_, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", false)
	if !errors.Is(err, ErrPollBudget) {
		t.Errorf("err = %v, want ErrPollBudget", err)
	}
}

func TestFetchProviderTranscriptNonRetryableStatus(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "no transcript for this video"}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	_, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", false)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var perr *providerError
	if !errors.As(err, &perr) || perr.StatusCode != http.StatusNotFound {
		t.Errorf("err = %v, want providerError with 404", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (4xx must not be retried)", requests)
	}
}

func TestFetchProviderTranscriptRetriesServerErrors(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"content": "eventually fine", "lang": "en"}`))
	}))
	defer srv.Close()
	initTestEngine(t, srv.URL)

	tr, err := FetchProviderTranscript(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "en", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requests != 3 {
		t.Errorf("requests = %d, want 3", requests)
	}
	if tr.Empty() {
		t.Error("expected non-empty transcript after retries")
	}
}

func TestNormalizeProviderPayloadEmptyContent(t *testing.T) {
	tr := normalizeProviderPayload(providerResponse{Lang: "en", AvailableLangs: []string{"en", "fr"}})
	if !tr.Empty() {
		t.Error("empty content should normalize to an empty transcript")
	}
	if len(tr.AvailableLangs) != 2 {
		t.Errorf("availableLangs = %v, should survive normalization", tr.AvailableLangs)
	}
}
