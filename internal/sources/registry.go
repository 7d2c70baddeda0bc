package sources

import (
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/browser"
)

// All builds one scraper per supported site. The slice order is the fixed
// merge order used when aggregating "all" results, which keeps tie-breaking
// on equal timestamps deterministic.
func All(mgr *browser.Manager, log *zap.Logger) []*Scraper {
	sites := []Site{
		EmitenNews{},
		CNBC{},
		Kontan{},
		Bisnis{},
	}
	scrapers := make([]*Scraper, 0, len(sites))
	for _, site := range sites {
		scrapers = append(scrapers, NewScraper(site, mgr, log))
	}
	return scrapers
}
