package engine

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// FetchURLContent extracts main text content from a URL using go-readability.
// Falls back to goquery, then regex-based extraction on failure.
func FetchURLContent(ctx context.Context, rawURL string) (title, content string, err error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "", err
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return extractWithGoquery(body)
	}

	var htmlBuf strings.Builder
	_ = article.RenderHTML(&htmlBuf)

	md, err := htmltomarkdown.ConvertString(htmlBuf.String())
	if err != nil {
		var textBuf strings.Builder
		_ = article.RenderText(&textBuf)
		md = textBuf.String()
	}
	text := strings.TrimSpace(md)
	if text == "" {
		return extractWithGoquery(body)
	}
	if len(text) > cfg.MaxTranscriptChars && cfg.MaxTranscriptChars > 0 {
		text = text[:cfg.MaxTranscriptChars] + "..."
	}
	return article.Title(), text, nil
}

// extractWithGoquery uses goquery for structured HTML parsing when readability fails.
func extractWithGoquery(body []byte) (title, content string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return extractWithRegex(body)
	}

	title = doc.Find("title").First().Text()
	if title == "" {
		doc.Find("meta[property=og:title]").Each(func(i int, s *goquery.Selection) {
			if title == "" {
				title, _ = s.Attr("content")
			}
		})
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	contentSel := doc.Find("article, main, .content, #content").First()
	if contentSel.Length() == 0 {
		contentSel = doc.Find("body")
	}

	content = strings.TrimSpace(multiSpaceRe.ReplaceAllString(contentSel.Text(), " "))
	if cfg.MaxTranscriptChars > 0 && len(content) > cfg.MaxTranscriptChars {
		content = content[:cfg.MaxTranscriptChars] + "..."
	}
	return title, content, nil
}

var (
	pageTitleRe  = regexp.MustCompile(`(?i)<title[^>]*>([^<]+)</title>`)
	dropBlocksRe = regexp.MustCompile(`(?is)<(?:script|style|noscript|header|footer|nav|aside|iframe)[^>]*>.*?</(?:script|style|noscript|header|footer|nav|aside|iframe)>`)
)

// extractWithRegex is the last-resort HTML stripper.
func extractWithRegex(body []byte) (title, content string, err error) {
	html := string(body)

	if m := pageTitleRe.FindStringSubmatch(html); len(m) > 1 {
		title = strings.TrimSpace(m[1])
	}

	html = dropBlocksRe.ReplaceAllString(html, "")
	content = CleanHTML(html)
	content = strings.TrimSpace(multiSpaceRe.ReplaceAllString(content, " "))

	if cfg.MaxTranscriptChars > 0 && len(content) > cfg.MaxTranscriptChars {
		content = content[:cfg.MaxTranscriptChars] + "..."
	}
	return title, content, nil
}
