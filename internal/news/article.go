// Package news holds the shared article model and the request/config types
// exchanged between the MCP tool layer, the aggregator and the site scrapers.
package news

import "time"

// Article is a single normalized news item. Once built by a scraper it is
// never mutated, except for Content which the content-fetch phase fills in.
type Article struct {
	Title            string    `json:"title"`
	URL              string    `json:"url"`
	Source           string    `json:"source"`
	PublishedAt      time.Time `json:"publishedAt"`
	RelativeDateText string    `json:"relativeDateText,omitempty"`
	ImageURL         string    `json:"imageUrl,omitempty"`
	Content          *string   `json:"content,omitempty"`
}

// DefaultTimeout is the navigation timeout applied when ScraperConfig.Timeout
// is zero.
const DefaultTimeout = 20 * time.Second

// ScraperConfig carries the per-request knobs handed to each scraper.
type ScraperConfig struct {
	// MaxArticles bounds the listing before any content fetch happens.
	MaxArticles int
	// IncludeContent enables the second-phase full-body fetch.
	IncludeContent bool
	// Keywords are search terms. How they are combined into a search URL is
	// source policy: some sites take only the first keyword, others join all
	// of them with spaces.
	Keywords []string
	// Timeout is the navigation timeout.
	Timeout time.Duration
}

// NavTimeout returns the configured navigation timeout or the default.
func (c ScraperConfig) NavTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
