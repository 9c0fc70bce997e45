package sources

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
)

// ErrNoTranscript is returned when the whole fallback chain ran dry.
var ErrNoTranscript = errors.New("no transcript available")

// maxLangFallbacks caps how many provider-reported alternate languages the
// chain tries before moving on.
const maxLangFallbacks = 3

// FetchTranscript runs the transcript fallback chain for a parsed video:
//
//  1. provider, chunked mode, preferred language
//  2. provider, flat-text mode, preferred language
//  3. provider, chunked mode, each provider-reported available language
//  4. YouTube only: direct Innertube retrieval
//  5. TikTok/Instagram only: page-description scrape
//
// An empty transcript continues the chain; ErrPollBudget aborts it (the
// provider is still working on the video, retrying other modes would just
// queue more jobs).
func FetchTranscript(ctx context.Context, video engine.Video, lang string) (engine.Transcript, error) {
	langs := preferredLangs(lang)
	primary := ""
	if len(langs) > 0 {
		primary = langs[0]
	}

	var availableLangs []string
	tryProvider := func(l string, flat bool) (engine.Transcript, bool, error) {
		t, err := FetchProviderTranscript(ctx, video.URL, l, flat)
		if err != nil {
			if errors.Is(err, ErrPollBudget) || ctx.Err() != nil {
				return engine.Transcript{}, false, err
			}
			slog.Warn("transcript provider miss",
				slog.String("video", video.ID), slog.String("lang", l),
				slog.Bool("flat", flat), slog.Any("err", err))
			return engine.Transcript{}, false, nil
		}
		if len(t.AvailableLangs) > 0 {
			availableLangs = t.AvailableLangs
		}
		if t.Empty() {
			engine.IncrTranscriptEmpty()
			return engine.Transcript{}, false, nil
		}
		return t, true, nil
	}

	// 1. chunked, preferred language
	if t, ok, err := tryProvider(primary, false); err != nil {
		return engine.Transcript{}, err
	} else if ok {
		return t, nil
	}

	// 2. flat text, preferred language
	if t, ok, err := tryProvider(primary, true); err != nil {
		return engine.Transcript{}, err
	} else if ok {
		return t, nil
	}

	// 3. alternate languages the provider reported
	tried := 0
	for _, l := range availableLangs {
		if l == primary || l == "" {
			continue
		}
		if tried++; tried > maxLangFallbacks {
			break
		}
		if t, ok, err := tryProvider(l, false); err != nil {
			return engine.Transcript{}, err
		} else if ok {
			return t, nil
		}
	}

	// 4. YouTube: direct Innertube retrieval
	if video.Platform == engine.PlatformYouTube {
		t, err := FetchYouTubeTranscript(ctx, video.ID, langs)
		if err == nil && !t.Empty() {
			return t, nil
		}
		if err != nil {
			slog.Warn("innertube fallback failed", slog.String("video", video.ID), slog.Any("err", err))
		}
		if ctx.Err() != nil {
			return engine.Transcript{}, ctx.Err()
		}
		return engine.Transcript{}, ErrNoTranscript
	}

	// 5. TikTok/Instagram: page description as a last resort
	t, err := FetchPageDescription(ctx, video)
	if err == nil && !t.Empty() {
		return t, nil
	}
	if err != nil {
		slog.Warn("page fallback failed", slog.String("video", video.ID), slog.Any("err", err))
	}
	if ctx.Err() != nil {
		return engine.Transcript{}, ctx.Err()
	}
	return engine.Transcript{}, ErrNoTranscript
}

// Summarize is the full summarize operation shared by the HTTP handler and
// the MCP tool: parse → cache lookup → transcript chain → LLM → cache store.
func Summarize(ctx context.Context, rawURL, lang string, style engine.SummaryStyle) (engine.Summary, error) {
	engine.IncrSummarizeRequests()

	video, err := engine.ParseVideoURL(rawURL)
	if err != nil {
		return engine.Summary{}, err
	}
	if style == "" {
		style = engine.StyleDetailed
	}

	key := engine.SummaryCacheKey(video, lang, style)
	if s, ok := engine.CacheGet(ctx, key); ok {
		s.Cached = true
		return s, nil
	}

	start := time.Now()
	transcript, err := FetchTranscript(ctx, video, lang)
	if err != nil {
		return engine.Summary{}, err
	}

	text, err := engine.Summarize(ctx, transcript.PlainText(), style, lang)
	if err != nil {
		return engine.Summary{}, err
	}

	s := engine.Summary{
		Platform:  video.Platform,
		VideoID:   video.ID,
		URL:       video.URL,
		Lang:      transcript.Lang,
		Style:     style,
		Summary:   text,
		Source:    transcript.Source,
		Segments:  len(transcript.Segments),
		CreatedAt: time.Now().UTC(),
	}
	engine.CacheSet(ctx, key, s)

	slog.Info("summarized",
		slog.String("platform", string(video.Platform)),
		slog.String("video", video.ID),
		slog.String("source", transcript.Source),
		slog.Int("segments", s.Segments),
		slog.Duration("elapsed", time.Since(start)))
	return s, nil
}

// preferredLangs returns the language preference order: the request language
// first, then the configured defaults.
func preferredLangs(lang string) []string {
	var langs []string
	if lang != "" {
		langs = append(langs, lang)
	}
	for _, l := range engine.Cfg.TranscriptLangs {
		if l != lang {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return langs
}
