package engine

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform identifies the video hosting service a URL belongs to.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
)

// ErrUnsupportedURL is returned for URLs that are not a recognized video link.
var ErrUnsupportedURL = errors.New("unsupported video URL")

// Video is the canonical identity of a video: platform + ID.
// URL is the normalized form with tracking parameters stripped.
type Video struct {
	Platform Platform `json:"platform"`
	ID       string   `json:"videoId"`
	URL      string   `json:"url"`
}

var (
	ytIDRe        = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	tiktokVideoRe = regexp.MustCompile(`^/@[^/]+/video/(\d+)`)
	tiktokShortRe = regexp.MustCompile(`^/([A-Za-z0-9]+)/?$`)
	instaRe       = regexp.MustCompile(`^/(reels?|p|tv)/([A-Za-z0-9_-]+)`)
)

// ParseVideoURL validates a raw URL and classifies it as YouTube, TikTok or
// Instagram. URLs from any other host are rejected with ErrUnsupportedURL.
func ParseVideoURL(raw string) (Video, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Video{}, fmt.Errorf("%w: empty URL", ErrUnsupportedURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Video{}, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Video{}, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	switch {
	case host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		return parseYouTube(u, host)
	case host == "tiktok.com" || strings.HasSuffix(host, ".tiktok.com"):
		return parseTikTok(u, host)
	case host == "instagram.com" || strings.HasSuffix(host, ".instagram.com"):
		return parseInstagram(u)
	}
	return Video{}, fmt.Errorf("%w: host %q", ErrUnsupportedURL, host)
}

func parseYouTube(u *url.URL, host string) (Video, error) {
	var id string
	path := u.Path

	switch {
	case host == "youtu.be":
		id = strings.Trim(path, "/")
	case strings.HasPrefix(path, "/watch"):
		id = u.Query().Get("v")
	case strings.HasPrefix(path, "/shorts/"),
		strings.HasPrefix(path, "/embed/"),
		strings.HasPrefix(path, "/live/"),
		strings.HasPrefix(path, "/v/"):
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) >= 2 {
			id = parts[1]
		}
	}

	if !ytIDRe.MatchString(id) {
		return Video{}, fmt.Errorf("%w: no YouTube video ID in %q", ErrUnsupportedURL, u.String())
	}
	return Video{
		Platform: PlatformYouTube,
		ID:       id,
		URL:      "https://www.youtube.com/watch?v=" + id,
	}, nil
}

func parseTikTok(u *url.URL, host string) (Video, error) {
	// Short links (vm./vt.) carry an opaque code — the transcript provider
	// follows the redirect, so the code stands in for the video ID.
	if host == "vm.tiktok.com" || host == "vt.tiktok.com" {
		m := tiktokShortRe.FindStringSubmatch(u.Path)
		if m == nil {
			return Video{}, fmt.Errorf("%w: no TikTok code in %q", ErrUnsupportedURL, u.String())
		}
		return Video{
			Platform: PlatformTikTok,
			ID:       m[1],
			URL:      "https://" + host + "/" + m[1],
		}, nil
	}

	m := tiktokVideoRe.FindStringSubmatch(u.Path)
	if m == nil {
		return Video{}, fmt.Errorf("%w: no TikTok video ID in %q", ErrUnsupportedURL, u.String())
	}
	return Video{
		Platform: PlatformTikTok,
		ID:       m[1],
		URL:      "https://www.tiktok.com" + strings.TrimSuffix(u.Path, "/"),
	}, nil
}

func parseInstagram(u *url.URL) (Video, error) {
	m := instaRe.FindStringSubmatch(u.Path)
	if m == nil {
		return Video{}, fmt.Errorf("%w: no Instagram shortcode in %q", ErrUnsupportedURL, u.String())
	}
	kind := m[1]
	if kind == "reels" {
		kind = "reel"
	}
	return Video{
		Platform: PlatformInstagram,
		ID:       m[2],
		URL:      "https://www.instagram.com/" + kind + "/" + m[2] + "/",
	}, nil
}
