package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziwdon/YouTubeSummarizer/internal/engine"
)

// Page-description fallback — the last resort for TikTok/Instagram videos
// with no transcript anywhere. The video page's og: meta tags usually carry
// the caption/description text, which is enough for a short summary.

// FetchPageDescription scrapes the video page and returns its description as
// a flat transcript. Uses the Chrome-fingerprint client when configured —
// both platforms block plain Go clients at the TLS layer.
func FetchPageDescription(ctx context.Context, video engine.Video) (engine.Transcript, error) {
	engine.IncrPageFallbacks()

	body, err := fetchPage(ctx, video.URL)
	if err == nil {
		if title, desc := extractOGMeta(body); desc != "" {
			text := desc
			if title != "" && !strings.Contains(desc, title) {
				text = title + ". " + desc
			}
			t := engine.FlatTranscript(text, "")
			t.Source = "page"
			if !t.Empty() {
				return t, nil
			}
		}
	}

	// og: tags missing or page blocked — try readability extraction.
	title, content, rerr := engine.FetchURLContent(ctx, video.URL)
	if rerr != nil {
		if err != nil {
			return engine.Transcript{}, fmt.Errorf("page fetch: %w", err)
		}
		return engine.Transcript{}, fmt.Errorf("page content: %w", rerr)
	}
	text := content
	if title != "" {
		text = title + ". " + content
	}
	t := engine.FlatTranscript(text, "")
	t.Source = "page"
	if t.Empty() {
		return engine.Transcript{}, errors.New("page has no usable description")
	}
	return t, nil
}

// fetchPage retrieves the raw video page HTML, preferring the
// browser-fingerprint client.
func fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if bc := engine.Cfg.BrowserClient; bc != nil {
		body, status, err := bc.Do(http.MethodGet, pageURL, engine.ChromeHeaders(), nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("status %d", status)
		}
		return body, nil
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range engine.ChromeHeaders() {
			req.Header.Set(k, v)
		}
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
}

// extractOGMeta walks the HTML tree and pulls og:title / og:description.
func extractOGMeta(body []byte) (title, desc string) {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", ""
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var prop, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "property", "name":
					prop = a.Val
				case "content":
					content = a.Val
				}
			}
			switch prop {
			case "og:title":
				if title == "" {
					title = strings.TrimSpace(content)
				}
			case "og:description", "description":
				if desc == "" {
					desc = strings.TrimSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return title, desc
}
