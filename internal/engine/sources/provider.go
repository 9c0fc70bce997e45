package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
)

// Transcript provider client. One commercial endpoint covers YouTube, TikTok
// and Instagram: GET /v1/transcript with url/lang/text query params and
// x-api-key auth. Two request modes exist — chunked (text=false, timestamped
// segments) and flat (text=true, one block of text). Long videos answer
// 202 + jobId, which is polled at a fixed interval until the job settles.

// ErrPollBudget is returned when an async transcript job did not settle
// within the configured poll budget.
var ErrPollBudget = errors.New("transcript job poll budget exhausted")

// errJobFailed marks a provider-side job failure; the fallback chain treats
// it as a miss, not a fatal error.
var errJobFailed = errors.New("transcript job failed")

// providerResponse is the settled payload in both sync and async flows.
// Content is either a chunk array or a flat string.
type providerResponse struct {
	Content        json.RawMessage `json:"content"`
	Lang           string          `json:"lang"`
	AvailableLangs []string        `json:"availableLangs"`
}

type providerChunk struct {
	Text     string `json:"text"`
	Offset   int64  `json:"offset"`
	Duration int64  `json:"duration"`
}

type providerJob struct {
	JobID string `json:"jobId"`
}

type providerJobStatus struct {
	Status string `json:"status"` // queued | active | completed | failed
	Error  string `json:"error,omitempty"`
	providerResponse
}

// providerError carries a non-retryable provider HTTP status.
type providerError struct {
	StatusCode int
	Body       string
}

func (e *providerError) Error() string {
	return fmt.Sprintf("transcript provider HTTP %d: %s", e.StatusCode, e.Body)
}

// FetchProviderTranscript requests a transcript in the given mode.
// flat=false asks for timestamped chunks, flat=true for one text block.
func FetchProviderTranscript(ctx context.Context, videoURL, lang string, flat bool) (engine.Transcript, error) {
	engine.IncrTranscriptRequests()

	q := url.Values{}
	q.Set("url", videoURL)
	if lang != "" {
		q.Set("lang", lang)
	}
	if flat {
		q.Set("text", "true")
	} else {
		q.Set("text", "false")
	}
	reqURL := engine.Cfg.TranscriptAPIURL + "/v1/transcript?" + q.Encode()

	status, body, err := providerGet(ctx, reqURL)
	if err != nil {
		return engine.Transcript{}, err
	}

	switch status {
	case http.StatusOK:
		var resp providerResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return engine.Transcript{}, fmt.Errorf("decode transcript response: %w", err)
		}
		return normalizeProviderPayload(resp), nil

	case http.StatusAccepted:
		var job providerJob
		if err := json.Unmarshal(body, &job); err != nil || job.JobID == "" {
			return engine.Transcript{}, fmt.Errorf("202 without job id: %w", err)
		}
		engine.IncrTranscriptJobs()
		return pollTranscriptJob(ctx, job.JobID)

	default:
		return engine.Transcript{}, &providerError{StatusCode: status, Body: engine.Truncate(string(body), 256)}
	}
}

// pollTranscriptJob polls an async transcript job with a static backoff until
// it settles or the poll budget runs out.
func pollTranscriptJob(ctx context.Context, jobID string) (engine.Transcript, error) {
	reqURL := engine.Cfg.TranscriptAPIURL + "/v1/transcript/" + url.PathEscape(jobID)

	for i := 0; i < engine.Cfg.JobPollBudget; i++ {
		select {
		case <-time.After(engine.Cfg.JobPollInterval):
		case <-ctx.Done():
			return engine.Transcript{}, ctx.Err()
		}

		engine.IncrTranscriptPolls()
		status, body, err := providerGet(ctx, reqURL)
		if err != nil {
			return engine.Transcript{}, err
		}
		if status != http.StatusOK {
			return engine.Transcript{}, &providerError{StatusCode: status, Body: engine.Truncate(string(body), 256)}
		}

		var js providerJobStatus
		if err := json.Unmarshal(body, &js); err != nil {
			return engine.Transcript{}, fmt.Errorf("decode job status: %w", err)
		}

		switch js.Status {
		case "completed":
			return normalizeProviderPayload(js.providerResponse), nil
		case "failed":
			return engine.Transcript{}, fmt.Errorf("%w: %s", errJobFailed, js.Error)
		case "queued", "active":
			// keep polling
		default:
			return engine.Transcript{}, fmt.Errorf("unknown job status %q", js.Status)
		}
	}
	return engine.Transcript{}, ErrPollBudget
}

// providerGet issues an authenticated GET with engine retry semantics.
// Returns the final status code and body; retryable statuses are retried
// inside RetryHTTP, everything else comes back to the caller.
func providerGet(ctx context.Context, reqURL string) (int, []byte, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-api-key", engine.Cfg.TranscriptAPIKey)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return 0, nil, fmt.Errorf("transcript provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return 0, nil, fmt.Errorf("read provider response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// normalizeProviderPayload reduces both provider shapes — chunked and flat —
// to the canonical transcript.
func normalizeProviderPayload(resp providerResponse) engine.Transcript {
	t := engine.Transcript{
		Lang:           resp.Lang,
		AvailableLangs: resp.AvailableLangs,
		Source:         "provider",
	}
	if len(resp.Content) == 0 {
		return t
	}

	var chunks []providerChunk
	if err := json.Unmarshal(resp.Content, &chunks); err == nil {
		for _, c := range chunks {
			text := engine.CleanSegmentText(c.Text)
			if text == "" {
				continue
			}
			t.Segments = append(t.Segments, engine.Segment{
				Text:     text,
				Offset:   c.Offset,
				Duration: c.Duration,
			})
		}
		return t
	}

	var flat string
	if err := json.Unmarshal(resp.Content, &flat); err == nil {
		ft := engine.FlatTranscript(flat, resp.Lang)
		t.Segments = ft.Segments
	}
	return t
}
