// Package browser owns the shared headless Chrome process. One browser is
// shared by every scrape in the process; each scrape borrows short-lived
// pages from it.
package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/news"
)

const (
	launchTimeout = 30 * time.Second
	probeTimeout  = 3 * time.Second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	viewportWidth  = 1366
	viewportHeight = 768
)

// Candidate executables probed in order when BROWSER_PATH is not set.
var defaultCandidates = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
}

// Resource types never needed for text extraction.
var blockedTypes = map[proto.NetworkResourceType]bool{
	proto.NetworkResourceTypeImage:      true,
	proto.NetworkResourceTypeStylesheet: true,
	proto.NetworkResourceTypeFont:       true,
	proto.NetworkResourceTypeMedia:      true,
}

// Trackers and ad networks, matched as URL substrings.
var blockedDomains = []string{
	"google-analytics.com",
	"googletagmanager.com",
	"googlesyndication.com",
	"doubleclick.net",
	"facebook.com/tr",
	"ads.",
	"analytics.",
}

// launchResult is shared by every caller waiting on the same launch attempt.
type launchResult struct {
	done    chan struct{}
	browser *rod.Browser
	err     error
}

// Manager hands out pages backed by a single shared browser process. The
// zero number of launches is lazy: nothing starts until the first page is
// requested. Concurrent first users share one launch attempt, and a browser
// that stops answering its liveness probe is replaced transparently.
type Manager struct {
	log     *zap.Logger
	binPath string

	launchFn func(ctx context.Context) (*rod.Browser, error)
	probeFn  func(b *rod.Browser) bool
	closeFn  func(b *rod.Browser) error

	mu       sync.Mutex
	browser  *rod.Browser
	inflight *launchResult
	pages    map[*rod.Page]*rod.HijackRouter
}

// NewManager builds a manager. binPath, when non-empty, overrides the
// candidate executable list.
func NewManager(log *zap.Logger, binPath string) *Manager {
	m := &Manager{
		log:     log.Named("browser"),
		binPath: binPath,
		pages:   make(map[*rod.Page]*rod.HijackRouter),
	}
	m.launchFn = m.launch
	m.probeFn = m.probe
	m.closeFn = func(b *rod.Browser) error { return b.Close() }
	return m
}

// Browser returns the shared browser handle, launching it if needed. All
// callers racing on a cold start wait on the same in-flight launch. A handle
// that fails its liveness probe is discarded and relaunched.
func (m *Manager) Browser(ctx context.Context) (*rod.Browser, error) {
	for {
		m.mu.Lock()

		if b := m.browser; b != nil {
			m.mu.Unlock()
			if m.probeFn(b) {
				return b, nil
			}
			m.log.Warn("browser liveness probe failed, discarding stale handle")
			m.discard(b)
			continue
		}

		if lr := m.inflight; lr != nil {
			m.mu.Unlock()
			select {
			case <-lr.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if lr.err != nil {
				return nil, lr.err
			}
			return lr.browser, nil
		}

		lr := &launchResult{done: make(chan struct{})}
		m.inflight = lr
		m.mu.Unlock()

		lr.browser, lr.err = m.launchFn(ctx)

		m.mu.Lock()
		m.browser = lr.browser
		m.inflight = nil
		m.mu.Unlock()
		close(lr.done)

		if lr.err != nil {
			return nil, lr.err
		}
		return lr.browser, nil
	}
}

// discard drops a stale handle so the next acquisition relaunches. Closing
// may fail if the process is already gone, which is fine.
func (m *Manager) discard(stale *rod.Browser) {
	m.mu.Lock()
	if m.browser == stale {
		m.browser = nil
		m.pages = make(map[*rod.Page]*rod.HijackRouter)
	}
	m.mu.Unlock()
	_ = m.closeFn(stale)
}

// probe checks that the browser process still answers a trivial CDP call.
func (m *Manager) probe(b *rod.Browser) bool {
	_, err := b.Timeout(probeTimeout).Version()
	return err == nil
}

// resolveBin picks the browser executable: the configured override first,
// then the fixed candidate list, taking the first path that exists on disk.
func (m *Manager) resolveBin() (string, error) {
	candidates := defaultCandidates
	if m.binPath != "" {
		candidates = append([]string{m.binPath}, candidates...)
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", &news.BrowserLaunchError{
		Tried: candidates,
		Err:   fmt.Errorf("no browser executable found"),
	}
}

func (m *Manager) launch(ctx context.Context) (*rod.Browser, error) {
	bin, err := m.resolveBin()
	if err != nil {
		return nil, err
	}

	m.log.Info("launching shared browser", zap.String("bin", bin))

	l := launcher.New().
		Bin(bin).
		Leakless(false).
		Set("headless", "new").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-software-rasterizer")

	u, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, &news.BrowserLaunchError{Tried: []string{bin}, Err: err}
	}

	b := rod.New().ControlURL(u)
	if err := b.Timeout(launchTimeout).Connect(); err != nil {
		return nil, &news.BrowserLaunchError{Tried: []string{bin}, Err: err}
	}

	m.log.Info("browser launched", zap.String("bin", bin))
	return b, nil
}

// NewPage opens a configured page on the shared browser: stealth scripts,
// request interception for non-essential resources, a desktop user agent and
// a fixed viewport.
func (m *Manager) NewPage(ctx context.Context) (*rod.Page, error) {
	b, err := m.Browser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("creating stealth page: %w", err)
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(hctx *rod.Hijack) {
		if shouldBlock(hctx.Request) {
			hctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		hctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		m.stopAndClose(page, router)
		return nil, fmt.Errorf("setting user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		m.stopAndClose(page, router)
		return nil, fmt.Errorf("setting viewport: %w", err)
	}

	m.mu.Lock()
	m.pages[page] = router
	m.mu.Unlock()

	return page, nil
}

func shouldBlock(req *rod.HijackRequest) bool {
	if blockedTypes[req.Type()] {
		return true
	}
	u := req.URL().String()
	for _, domain := range blockedDomains {
		if strings.Contains(u, domain) {
			return true
		}
	}
	return false
}

// ClosePage releases a page back to the browser. It never fails: the page
// may already be closed or the connection already dropped.
func (m *Manager) ClosePage(page *rod.Page) {
	if page == nil {
		return
	}

	m.mu.Lock()
	router := m.pages[page]
	delete(m.pages, page)
	m.mu.Unlock()

	if router != nil {
		_ = router.Stop()
	}
	_ = page.Close()
}

func (m *Manager) stopAndClose(page *rod.Page, router *rod.HijackRouter) {
	_ = router.Stop()
	_ = page.Close()
}

// Cleanup closes every open page and the browser process, resetting the
// manager so a later acquisition relaunches cleanly. Safe to call when no
// browser was ever launched.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	b := m.browser
	pages := m.pages
	m.browser = nil
	m.pages = make(map[*rod.Page]*rod.HijackRouter)
	m.mu.Unlock()

	for page, router := range pages {
		if router != nil {
			_ = router.Stop()
		}
		_ = page.Close()
	}

	if b != nil {
		if err := m.closeFn(b); err != nil {
			m.log.Warn("closing browser", zap.Error(err))
		} else {
			m.log.Info("shared browser closed")
		}
	}
}
