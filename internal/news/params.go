package news

import "fmt"

// Source keys accepted by the scrape_stock_news tool.
const (
	SourceCNBC       = "cnbc"
	SourceKontan     = "kontan"
	SourceBisnis     = "bisnis"
	SourceEmitenNews = "emitennews"
	SourceAll        = "all"
)

const (
	// DefaultLimit is applied when the caller omits limit.
	DefaultLimit = 10
	// MaxLimit is the hard ceiling on returned articles.
	MaxLimit = 50
)

var knownSources = map[string]bool{
	SourceCNBC:       true,
	SourceKontan:     true,
	SourceBisnis:     true,
	SourceEmitenNews: true,
	SourceAll:        true,
}

// RequestParams is the top-level tool input.
type RequestParams struct {
	Source         string   `json:"source"`
	Limit          int      `json:"limit,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	IncludeContent bool     `json:"includeContent,omitempty"`
}

// Validate checks the params and applies defaults in place. It must be
// called before any browser work so malformed requests never cost a launch.
func (p *RequestParams) Validate() error {
	if !knownSources[p.Source] {
		return &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown source %q", p.Source)}
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return &ValidationError{Field: "limit", Reason: fmt.Sprintf("limit must be between 1 and %d, got %d", MaxLimit, p.Limit)}
	}
	return nil
}
