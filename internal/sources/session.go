package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nofendian17/stock-news-mcp/internal/browser"
	"github.com/nofendian17/stock-news-mcp/internal/news"
)

const (
	defaultMaxArticles = 20

	navRetries   = 2
	retryBackoff = 500 * time.Millisecond
	markerWait   = 3 * time.Second

	contentConcurrency = 3
	contentNavTimeout  = 12 * time.Second
)

// session holds the one page a scrape owns for its whole duration, plus the
// navigation and content-fetch helpers every site scraper composes. Sessions
// are built per scrape call and never reused. Content fetches open their own
// short-lived pages and never touch the session page.
type session struct {
	mgr  *browser.Manager
	log  *zap.Logger
	page *rod.Page

	// fetch runs the content phase; defaults to fetchContents.
	fetch func(ctx context.Context, urls []string, selector string) map[string]string
}

// acquirePage borrows a page from the manager unless one is already held.
func (s *session) acquirePage(ctx context.Context) error {
	if s.page != nil {
		return nil
	}
	page, err := s.mgr.NewPage(ctx)
	if err != nil {
		return err
	}
	s.page = page
	return nil
}

// release gives the held page back. Idempotent.
func (s *session) release() {
	if s.page != nil {
		s.mgr.ClosePage(s.page)
		s.page = nil
	}
}

// navigateWithRetry drives the session page to url, retrying with a linearly
// growing backoff. Exhausting the budget yields a NavigationError.
func (s *session) navigateWithRetry(ctx context.Context, url, marker string, timeout time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= navRetries; attempt++ {
		lastErr = navigateTo(ctx, s.page, url, marker, timeout)
		if lastErr == nil {
			return nil
		}
		s.log.Warn("navigation failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < navRetries {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return &news.NavigationError{URL: url, Attempts: navRetries, Err: lastErr}
}

// navigateTo waits for domcontentloaded and then, when a marker selector is
// given, for the marker element to appear (bounded separately, because some
// pages reach domcontentloaded long before their listing renders).
func navigateTo(ctx context.Context, page *rod.Page, url, marker string, timeout time.Duration) error {
	p := page.Context(ctx).Timeout(timeout)

	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	wait()

	if marker != "" {
		if _, err := p.Timeout(markerWait).Element(marker); err != nil {
			return fmt.Errorf("waiting for %q: %w", marker, err)
		}
	}
	return nil
}

// pageDocument parses the rendered session page into a goquery document so
// extraction stays a pure function over it.
func (s *session) pageDocument() (*goquery.Document, error) {
	html, err := s.page.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing rendered page: %w", err)
	}
	return doc, nil
}

// fetchContents fetches article bodies with at most contentConcurrency pages
// open at once. A failed fetch degrades to an empty body for that article
// only; siblings and the overall scrape are unaffected.
func (s *session) fetchContents(ctx context.Context, urls []string, selector string) map[string]string {
	bodies := make([]string, len(urls))

	var g errgroup.Group
	g.SetLimit(contentConcurrency)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			bodies[i] = s.fetchContent(ctx, u, selector)
			return nil
		})
	}
	// The workers never return errors: failures already degraded to "".
	_ = g.Wait()

	out := make(map[string]string, len(urls))
	for i, u := range urls {
		out[u] = bodies[i]
	}
	return out
}

// fetchContent opens a fresh page for one article, extracts its body text
// and closes the page again. Every failure path returns "".
func (s *session) fetchContent(ctx context.Context, url, selector string) string {
	page, err := s.mgr.NewPage(ctx)
	if err != nil {
		s.log.Warn("content page unavailable", zap.String("url", url), zap.Error(err))
		return ""
	}
	defer s.mgr.ClosePage(page)

	if err := navigateTo(ctx, page, url, "", contentNavTimeout); err != nil {
		s.log.Warn("content fetch failed", zap.String("url", url), zap.Error(err))
		return ""
	}

	html, err := page.HTML()
	if err != nil {
		s.log.Warn("content read failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return extractContent(doc, selector)
}

// extractContent returns the trimmed text of the first node matching
// selector, with embedded script and style nodes stripped. No match means
// an empty body, not an error.
func extractContent(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	sel.Find("script, style").Remove()
	return strings.TrimSpace(sel.Text())
}
