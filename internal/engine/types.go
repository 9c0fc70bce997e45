package engine

import "time"

// SummaryStyle selects the shape of the generated summary.
type SummaryStyle string

const (
	StyleBullets  SummaryStyle = "bullets"
	StyleShort    SummaryStyle = "short"
	StyleDetailed SummaryStyle = "detailed"
)

// ValidStyle reports whether s is a known summary style. Empty means
// "use the default".
func ValidStyle(s string) bool {
	switch SummaryStyle(s) {
	case StyleBullets, StyleShort, StyleDetailed, "":
		return true
	}
	return false
}

// Summary is the final output of a summarize operation. It is the unit
// stored in the cache and returned by both the HTTP API and the MCP tool.
type Summary struct {
	Platform  Platform     `json:"platform"`
	VideoID   string       `json:"videoId"`
	URL       string       `json:"url"`
	Lang      string       `json:"lang,omitempty"`
	Style     SummaryStyle `json:"style"`
	Summary   string       `json:"summary"`
	Source    string       `json:"source"` // transcript origin: provider | innertube | page
	Segments  int          `json:"segments"`
	Cached    bool         `json:"cached"`
	CreatedAt time.Time    `json:"createdAt"`
}
