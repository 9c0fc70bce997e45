// video-summarizer — summarize YouTube, TikTok and Instagram videos.
//
// Serves an embedded web UI plus a JSON API on HTTP_ADDR, and optionally
// an MCP server on MCP_PORT exposing summarize_video and get_transcript.
// Transcripts come from a hosted transcript API with Innertube and page
// scraping fallbacks; summarization goes through an OpenAI-compatible LLM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
	"github.com/ziwdon/YouTubeSummarizer/internal/mcptool"
	"github.com/ziwdon/YouTubeSummarizer/internal/server"
	"github.com/ziwdon/YouTubeSummarizer/internal/store"
)

var (
	version  = "dev"
	httpAddr = env.Str("HTTP_ADDR", ":8080")
	mcpPort  = env.Str("MCP_PORT", "")
)

func main() {
	initEngine()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting video-summarizer",
		slog.String("version", version),
		slog.String("http_addr", httpAddr),
	)

	if mcpPort != "" {
		go runMCP()
	}

	srv := server.New(server.Config{
		Addr:          httpAddr,
		BasicAuthUser: env.Str("BASIC_AUTH_USER", ""),
		BasicAuthPass: env.Str("BASIC_AUTH_PASS", ""),
		RateLimit:     env.Float("RATE_LIMIT_RPS", 5),
		RateBurst:     env.Int("RATE_LIMIT_BURST", 10),
	})
	if err := srv.Run(ctx); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}

	if s := store.Get(); s != nil {
		if err := s.Close(); err != nil {
			slog.Warn("history close failed", slog.Any("error", err))
		}
	}
}

func runMCP() {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "video-summarizer",
		Version: version,
	}, nil)
	mcptool.RegisterTools(mcpServer)

	slog.Info("mcp server listening", slog.String("port", mcpPort))
	if err := mcpserver.Run(mcpServer, mcpserver.Config{
		Name:         "video-summarizer",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("mcp server failed", slog.Any("error", err))
	}
}

func initEngine() {
	c := engine.Config{
		TranscriptAPIURL:     env.Str("TRANSCRIPT_API_URL", "https://api.supadata.ai"),
		TranscriptAPIKey:     env.Str("TRANSCRIPT_API_KEY", ""),
		TranscriptLangs:      env.List("TRANSCRIPT_LANGS", "en"),
		JobPollInterval:      env.Duration("JOB_POLL_INTERVAL", 3*time.Second),
		JobPollBudget:        env.Int("JOB_POLL_BUDGET", 40),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 8192),
		MaxTranscriptChars:   env.Int("MAX_TRANSCRIPT_CHARS", 120000),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.TranscriptAPIKey == "" {
		slog.Warn("TRANSCRIPT_API_KEY not set, relying on Innertube and page fallbacks only")
	}

	bc, err := engine.NewBrowserClient()
	if err != nil {
		slog.Warn("browser client init failed, page fallback uses plain HTTP", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
	} else {
		slog.Warn("LLM_API_KEY not set, summarization will fail")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	st, err := store.Open(context.Background(),
		env.Str("DATABASE_URL", ""),
		env.Str("SQLITE_PATH", ""))
	if err != nil {
		slog.Warn("history store init failed, continuing without history", slog.Any("error", err))
	} else {
		store.Set(st)
	}
}
