// Package sources implements the per-site scrapers behind the
// scrape_stock_news tool. Each news site plugs its selectors, URL building
// and date format into the Site interface; the shared Scraper runs the
// navigate / extract / normalize / content-fetch pipeline that is identical
// across all of them.
package sources

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/browser"
	"github.com/nofendian17/stock-news-mcp/internal/news"
)

// Source is what the aggregator sees: a named scraper whose page is always
// released when the scrape ends, on success and on failure alike.
type Source interface {
	Name() string
	ScrapeWithCleanup(ctx context.Context, cfg news.ScraperConfig) ([]news.Article, error)
}

// listingItem is one raw entry extracted from a rendered listing page.
// Entries with an empty title or URL are skipped by the extractors, never
// emitted half-filled.
type listingItem struct {
	Title    string
	URL      string
	ImageURL string
	DateText string
}

// Site is the capability set that varies per news source.
type Site interface {
	// Name is the request-facing source key (cnbc, kontan, ...).
	Name() string
	// Label is the human-readable source put on every article.
	Label() string
	// SearchURL builds the listing URL for the given keywords. Whether all
	// keywords are joined or only the first is used is site policy.
	SearchURL(keywords []string) string
	// Marker is a selector whose presence signals the listing has rendered.
	Marker() string
	// ExtractListing pulls raw article entries out of a rendered listing
	// document. Must be a pure function of the document.
	ExtractListing(doc *goquery.Document) []listingItem
	// ResolveURL turns a scraped (possibly relative) link into an absolute one.
	ResolveURL(raw string) string
	// ContentSelector locates the article body on a detail page.
	ContentSelector() string
	// ParseDate turns the site's raw date text into a timestamp, falling
	// back to now when the text is missing or unrecognized.
	ParseDate(text string, now time.Time) time.Time
}

// Scraper runs the shared scrape pipeline for one Site. It holds no page
// state itself; every scrape builds its own session, so concurrent calls on
// the same source never share a page.
type Scraper struct {
	site Site
	mgr  *browser.Manager
	log  *zap.Logger
	now  func() time.Time
}

// NewScraper wires a site adapter to the shared browser manager.
func NewScraper(site Site, mgr *browser.Manager, log *zap.Logger) *Scraper {
	return &Scraper{
		site: site,
		mgr:  mgr,
		log:  log.Named(site.Name()),
		now:  time.Now,
	}
}

// Name returns the source key.
func (s *Scraper) Name() string { return s.site.Name() }

// newSession builds the per-call session owning this scrape's page.
func (s *Scraper) newSession() *session {
	sess := &session{mgr: s.mgr, log: s.log}
	sess.fetch = sess.fetchContents
	return sess
}

// ScrapeWithCleanup runs the full pipeline with a guaranteed page release on
// every exit path.
func (s *Scraper) ScrapeWithCleanup(ctx context.Context, cfg news.ScraperConfig) ([]news.Article, error) {
	sess := s.newSession()
	defer sess.release()
	return s.scrape(ctx, sess, cfg)
}

func (s *Scraper) scrape(ctx context.Context, sess *session, cfg news.ScraperConfig) ([]news.Article, error) {
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = defaultMaxArticles
	}

	if err := sess.acquirePage(ctx); err != nil {
		return nil, err
	}

	searchURL := s.site.SearchURL(cfg.Keywords)
	if err := sess.navigateWithRetry(ctx, searchURL, s.site.Marker(), cfg.NavTimeout()); err != nil {
		return nil, err
	}

	doc, err := sess.pageDocument()
	if err != nil {
		return nil, err
	}

	articles := s.assemble(ctx, sess, doc, cfg)

	s.log.Info("articles scraped",
		zap.Int("count", len(articles)),
		zap.Bool("withContent", cfg.IncludeContent))

	return articles, nil
}

// assemble turns a rendered listing document into articles: extract,
// truncate to the listing bound, normalize, and only then run the optional
// content phase so at most MaxArticles bodies are ever fetched.
func (s *Scraper) assemble(ctx context.Context, sess *session, doc *goquery.Document, cfg news.ScraperConfig) []news.Article {
	items := s.site.ExtractListing(doc)
	if len(items) > cfg.MaxArticles {
		items = items[:cfg.MaxArticles]
	}

	now := s.now()
	articles := make([]news.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, news.Article{
			Title:            it.Title,
			URL:              s.site.ResolveURL(it.URL),
			Source:           s.site.Label(),
			PublishedAt:      s.site.ParseDate(it.DateText, now),
			RelativeDateText: it.DateText,
			ImageURL:         it.ImageURL,
		})
	}

	if cfg.IncludeContent && len(articles) > 0 {
		s.log.Info("fetching article content", zap.Int("count", len(articles)))

		urls := make([]string, len(articles))
		for i := range articles {
			urls[i] = articles[i].URL
		}
		contents := sess.fetch(ctx, urls, s.site.ContentSelector())
		for i := range articles {
			body := contents[articles[i].URL]
			articles[i].Content = &body
		}
	}

	return articles
}
