// Package mcptool exposes the summarizer as MCP tools so agents can
// summarize videos without going through the HTTP API.
package mcptool

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
	"github.com/ziwdon/YouTubeSummarizer/internal/engine/sources"
	"github.com/ziwdon/YouTubeSummarizer/internal/store"
)

type SummarizeInput struct {
	URL   string `json:"url" jsonschema:"video URL (YouTube, TikTok or Instagram)"`
	Lang  string `json:"lang,omitempty" jsonschema:"preferred transcript language code, e.g. en"`
	Style string `json:"style,omitempty" jsonschema:"summary style: bullets, short or detailed"`
}

type TranscriptInput struct {
	URL  string `json:"url" jsonschema:"video URL (YouTube, TikTok or Instagram)"`
	Lang string `json:"lang,omitempty" jsonschema:"preferred transcript language code, e.g. en"`
}

type TranscriptOutput struct {
	Platform string   `json:"platform"`
	VideoID  string   `json:"videoId"`
	Lang     string   `json:"lang,omitempty"`
	Source   string   `json:"source"`
	Text     string   `json:"text"`
	Langs    []string `json:"availableLangs,omitempty"`
}

// RegisterTools registers summarize_video and get_transcript on the server.
func RegisterTools(server *mcp.Server) {
	registerSummarizeVideo(server)
	registerGetTranscript(server)
}

func registerSummarizeVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_video",
		Description: "Summarize a YouTube, TikTok or Instagram video from its URL. Fetches the transcript, falls back across languages and sources when needed, and returns an LLM-written summary in the requested style (bullets, short or detailed).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (*mcp.CallToolResult, engine.Summary, error) {
		if input.URL == "" {
			return nil, engine.Summary{}, errors.New("url is required")
		}
		if !engine.ValidStyle(input.Style) {
			return nil, engine.Summary{}, errors.New("style must be one of: bullets, short, detailed")
		}

		summary, err := sources.Summarize(ctx, input.URL, input.Lang, engine.SummaryStyle(input.Style))
		if err != nil {
			return nil, engine.Summary{}, err
		}
		if !summary.Cached {
			if err := store.Record(ctx, summary); err != nil {
				slog.Warn("history write failed", "error", err)
			}
		}
		return nil, summary, nil
	})
}

func registerGetTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_transcript",
		Description: "Fetch the timestamped transcript of a YouTube, TikTok or Instagram video without summarizing it. Lines are prefixed with [mm:ss] offsets.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		if input.URL == "" {
			return nil, TranscriptOutput{}, errors.New("url is required")
		}

		video, err := engine.ParseVideoURL(input.URL)
		if err != nil {
			return nil, TranscriptOutput{}, err
		}
		t, err := sources.FetchTranscript(ctx, video, input.Lang)
		if err != nil {
			return nil, TranscriptOutput{}, err
		}
		return nil, TranscriptOutput{
			Platform: string(video.Platform),
			VideoID:  video.ID,
			Lang:     t.Lang,
			Source:   t.Source,
			Text:     t.Timestamped(),
			Langs:    t.AvailableLangs,
		}, nil
	})
}
