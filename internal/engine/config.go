package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	TranscriptAPIURL string // transcript provider base URL
	TranscriptAPIKey string
	TranscriptLangs  []string // preferred transcript languages, in order

	JobPollInterval time.Duration // static backoff between async job polls
	JobPollBudget   int           // max polls before giving up

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	MaxTranscriptChars   int // cap on transcript text passed to the LLM
	FetchTimeout         time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = page-scrape fallback uses the plain client
	LLMClient     *llm.Client
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, server).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
