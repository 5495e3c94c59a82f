// Package walker implements a same-origin breadth-first crawl of a
// seed URL: it discovers HTML pages and hands every script it finds,
// external or inline, off to the downloader stage.
//
// The worker pool tracks outstanding work with an atomic in-flight
// counter rather than a plain sync.WaitGroup, since a WaitGroup alone
// can't distinguish "queue momentarily empty, more work still in
// flight" from "truly done." The pool only finishes once the counter
// returns to zero.
package walker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/model"
)

// Header is one extra request header applied to every request the
// walker (and, via the shared client, the downloader) makes.
type Header struct {
	Name  string
	Value string
}

// Config configures a Walker.
type Config struct {
	Headers  []Header
	MaxPages int // 0 means unlimited
	MaxDepth int // 0 means unlimited
	Workers  int // 0 selects runtime.NumCPU(), clamped to [2, 32]
	Logger   *slog.Logger
}

// Walker crawls a single origin starting from a seed URL.
type Walker struct {
	client  *http.Client
	headers []Header
	logger  *slog.Logger

	maxPages int
	maxDepth int
	workers  int

	origin string

	visited  *visitedSet
	inFlight atomic.Int64
	pages    atomic.Int64
	pageErrs atomic.Int64
}

// New builds a Walker that shares client for all HTTP requests, so
// cookies set on the seed page are sent on subsequent same-origin
// requests.
func New(client *http.Client, cfg Config) *Walker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 2 {
		workers = 2
	}
	if workers > 32 {
		workers = 32
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Walker{
		client:   client,
		headers:  cfg.Headers,
		logger:   logger,
		maxPages: cfg.MaxPages,
		maxDepth: cfg.MaxDepth,
		workers:  workers,
		visited:  newVisitedSet(),
	}
}

// PageErrors returns the number of non-fatal page fetch/parse failures
// encountered during the most recent Run.
func (w *Walker) PageErrors() int64 { return w.pageErrs.Load() }

// PagesVisited returns the number of pages successfully fetched and
// parsed during the most recent Run.
func (w *Walker) PagesVisited() int64 { return w.pages.Load() }

type workItem struct {
	url   string
	depth int
}

// Run crawls starting from seed, sending every discovered script to
// scriptsOut. scriptsOut is closed when the crawl finishes (either the
// queue drains or ctx is cancelled). Run itself returns once all
// workers have exited.
//
// The seed page is fetched directly here, outside the worker pool: a
// failure to reach it is a SeedError (fatal), distinct from a PageError
// on any page reached afterward by following links (non-fatal).
func (w *Walker) Run(ctx context.Context, seed string, scriptsOut chan<- model.ScriptRef) error {
	defer close(scriptsOut)

	seedURL, err := url.Parse(seed)
	if err != nil {
		return &keyerrors.SeedError{URL: seed, Cause: err}
	}
	if seedURL.Scheme != "http" && seedURL.Scheme != "https" {
		return &keyerrors.SeedError{URL: seed, Cause: fmt.Errorf("unsupported scheme %q", seedURL.Scheme)}
	}
	w.origin = originOf(seedURL)
	if !w.visited.markIfNew(seedURL.String()) {
		return nil
	}

	links, scripts, err := w.fetchAndParse(ctx, seedURL)
	if err != nil {
		return &keyerrors.SeedError{URL: seed, Cause: err}
	}
	w.pages.Add(1)
	if !w.emitScripts(ctx, seedURL.String(), scripts, scriptsOut) {
		return nil
	}

	jobs := make(chan workItem, 4096)

	enqueue := func(item workItem) {
		w.inFlight.Add(1)
		select {
		case jobs <- item:
		default:
			go func() { jobs <- item }()
		}
	}

	// The seed is always depth 0, so the maxDepth cutoff (which only
	// ever fires once item.depth >= maxDepth) never excludes its links.
	w.enqueueLinks(links, 1, enqueue)
	if w.inFlight.Load() == 0 {
		close(jobs)
	}

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case item, ok := <-jobs:
					if !ok {
						return
					}
					w.visitOne(ctx, item, enqueue, scriptsOut)
					if w.inFlight.Add(-1) == 0 {
						close(jobs)
					}
				}
			}
		}()
	}
	wg.Wait()

	return nil
}

func (w *Walker) visitOne(ctx context.Context, item workItem, enqueue func(workItem), scriptsOut chan<- model.ScriptRef) {
	if w.maxPages > 0 && w.pages.Load() >= int64(w.maxPages) {
		return
	}

	pageURL, err := url.Parse(item.url)
	if err != nil {
		w.logPageErr(item.url, err)
		return
	}

	links, scripts, err := w.fetchAndParse(ctx, pageURL)
	if err != nil {
		w.logPageErr(item.url, err)
		return
	}
	w.pages.Add(1)

	if !w.emitScripts(ctx, item.url, scripts, scriptsOut) {
		return
	}

	if w.maxDepth > 0 && item.depth >= w.maxDepth {
		return
	}
	w.enqueueLinks(links, item.depth+1, enqueue)
}

// emitScripts sends every script found on pageURL to scriptsOut,
// returning false if ctx was cancelled before all of them were sent.
func (w *Walker) emitScripts(ctx context.Context, pageURL string, scripts []scriptTag, scriptsOut chan<- model.ScriptRef) bool {
	for i, s := range scripts {
		var ref model.ScriptRef
		if s.src != "" {
			ref = model.ScriptRef{External: &model.ExternalScript{URL: s.src}}
		} else {
			ref = model.ScriptRef{Inline: &model.InlineScript{PageURL: pageURL, Index: i, Body: s.body}}
		}
		select {
		case scriptsOut <- ref:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// enqueueLinks enqueues every same-origin, not-yet-visited link at the
// given depth.
func (w *Walker) enqueueLinks(links []string, depth int, enqueue func(workItem)) {
	for _, link := range links {
		if !w.isAllowedLink(link) {
			continue
		}
		if !w.visited.markIfNew(link) {
			continue
		}
		enqueue(workItem{url: link, depth: depth})
	}
}

func (w *Walker) fetchAndParse(ctx context.Context, pageURL *url.URL) ([]string, []scriptTag, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, nil, err
	}
	w.applyHeaders(req)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "" && !isHTMLContentType(ct) {
		return nil, nil, nil
	}

	body := io.LimitReader(resp.Body, 20*1024*1024)
	result, err := parsePage(body, resp.Request.URL)
	if err != nil {
		return nil, nil, err
	}

	return result.links, result.scripts, nil
}

func (w *Walker) applyHeaders(req *http.Request) {
	for _, h := range w.headers {
		req.Header.Set(h.Name, h.Value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "keyhunter/1.0 (+https://github.com/shaniidev/keyhunter)")
	}
}

func (w *Walker) isAllowedLink(link string) bool {
	if hasBannedExtension(link) {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return originOf(u) == w.origin
}

func (w *Walker) logPageErr(pageURL string, err error) {
	w.pageErrs.Add(1)
	w.logger.Warn("page fetch failed", "url", pageURL, "err", err)
}

func originOf(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func isHTMLContentType(ct string) bool {
	return bytes.Contains([]byte(ct), []byte("html"))
}
