package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SummarizeRequests  atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptJobs     atomic.Int64
	TranscriptPolls    atomic.Int64
	TranscriptEmpty    atomic.Int64
	InnertubeFallbacks atomic.Int64
	PageFallbacks      atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	HistoryWrites      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"summarize_requests":  metrics.SummarizeRequests.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_jobs":     metrics.TranscriptJobs.Load(),
		"transcript_polls":    metrics.TranscriptPolls.Load(),
		"transcript_empty":    metrics.TranscriptEmpty.Load(),
		"innertube_fallbacks": metrics.InnertubeFallbacks.Load(),
		"page_fallbacks":      metrics.PageFallbacks.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"history_writes":      metrics.HistoryWrites.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"summarize_requests",
		"transcript_requests", "transcript_jobs", "transcript_polls", "transcript_empty",
		"innertube_fallbacks", "page_fallbacks",
		"llm_calls", "llm_errors",
		"history_writes",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the server and sources sub-packages.
func IncrSummarizeRequests()  { metrics.SummarizeRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptJobs()     { metrics.TranscriptJobs.Add(1) }
func IncrTranscriptPolls()    { metrics.TranscriptPolls.Add(1) }
func IncrTranscriptEmpty()    { metrics.TranscriptEmpty.Add(1) }
func IncrInnertubeFallbacks() { metrics.InnertubeFallbacks.Add(1) }
func IncrPageFallbacks()      { metrics.PageFallbacks.Add(1) }
func IncrHistoryWrites()      { metrics.HistoryWrites.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
