package engine

import (
	"errors"
	"testing"
)

func TestParseVideoURL(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantPlatform Platform
		wantID       string
		wantURL      string
	}{
		{
			name:         "youtube watch",
			raw:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "youtube watch with extra params",
			raw:          "https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s&si=tracking",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "youtu.be short link",
			raw:          "https://youtu.be/dQw4w9WgXcQ?si=abc",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "youtube shorts",
			raw:          "https://www.youtube.com/shorts/dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "youtube embed",
			raw:          "https://www.youtube.com/embed/dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "youtube live",
			raw:          "https://www.youtube.com/live/dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "mobile youtube",
			raw:          "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "scheme-less input",
			raw:          "youtube.com/watch?v=dQw4w9WgXcQ",
			wantPlatform: PlatformYouTube,
			wantID:       "dQw4w9WgXcQ",
			wantURL:      "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:         "tiktok video",
			raw:          "https://www.tiktok.com/@someuser/video/7234567890123456789",
			wantPlatform: PlatformTikTok,
			wantID:       "7234567890123456789",
			wantURL:      "https://www.tiktok.com/@someuser/video/7234567890123456789",
		},
		{
			name:         "tiktok short link",
			raw:          "https://vm.tiktok.com/ZMabcDEF1/",
			wantPlatform: PlatformTikTok,
			wantID:       "ZMabcDEF1",
			wantURL:      "https://vm.tiktok.com/ZMabcDEF1",
		},
		{
			name:         "instagram reel",
			raw:          "https://www.instagram.com/reel/Cabc123_xyz/",
			wantPlatform: PlatformInstagram,
			wantID:       "Cabc123_xyz",
			wantURL:      "https://www.instagram.com/reel/Cabc123_xyz/",
		},
		{
			name:         "instagram reels plural normalized",
			raw:          "https://www.instagram.com/reels/Cabc123_xyz/?igsh=track",
			wantPlatform: PlatformInstagram,
			wantID:       "Cabc123_xyz",
			wantURL:      "https://www.instagram.com/reel/Cabc123_xyz/",
		},
		{
			name:         "instagram post",
			raw:          "https://instagram.com/p/Cabc123_xyz",
			wantPlatform: PlatformInstagram,
			wantID:       "Cabc123_xyz",
			wantURL:      "https://www.instagram.com/p/Cabc123_xyz/",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVideoURL(tt.raw)
			if err != nil {
				t.Fatalf("ParseVideoURL(%q): %v", tt.raw, err)
			}
			if v.Platform != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", v.Platform, tt.wantPlatform)
			}
			if v.ID != tt.wantID {
				t.Errorf("id = %q, want %q", v.ID, tt.wantID)
			}
			if v.URL != tt.wantURL {
				t.Errorf("url = %q, want %q", v.URL, tt.wantURL)
			}
		})
	}
}

func TestParseVideoURLRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   "},
		{"unknown host", "https://vimeo.com/12345"},
		{"bad scheme", "ftp://youtube.com/watch?v=dQw4w9WgXcQ"},
		{"youtube without id", "https://www.youtube.com/watch"},
		{"youtube bad id length", "https://youtu.be/short"},
		{"tiktok profile page", "https://www.tiktok.com/@someuser"},
		{"instagram profile", "https://www.instagram.com/someuser/"},
		{"lookalike host", "https://notyoutube.com/watch?v=dQw4w9WgXcQ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVideoURL(tt.raw)
			if !errors.Is(err, ErrUnsupportedURL) {
				t.Errorf("ParseVideoURL(%q) err = %v, want ErrUnsupportedURL", tt.raw, err)
			}
		})
	}
}
