// Package pipeline wires the walker, downloader and extractor stages
// into one streaming scan, connected by bounded channels so a slow
// extractor applies backpressure all the way back to the crawler.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/shaniidev/keyhunter/internal/catalogue"
	"github.com/shaniidev/keyhunter/internal/extract"
	"github.com/shaniidev/keyhunter/internal/fetch"
	"github.com/shaniidev/keyhunter/internal/model"
	"github.com/shaniidev/keyhunter/internal/walker"
)

// scriptsChanCap and sourcesChanCap are the channel capacity floors.
const (
	scriptsChanCap = 64
	sourcesChanCap = 32
)

// Config configures a Pipeline run.
type Config struct {
	Walker    walker.Config
	Headers   []fetch.Header
	Catalogue *catalogue.Catalogue
	Logger    *slog.Logger
	Workers   int // shared downloader/extractor pool size; 0 selects runtime.NumCPU() clamped to [2, 32]
}

// Result summarizes one completed scan.
type Result struct {
	Findings       []model.Finding
	PagesVisited   int64
	ScriptsScanned int64
	PageErrors     int64
	ScriptErrors   int64
	ParseErrors    int64
}

// Pipeline runs one scan of a seed URL through all three stages.
type Pipeline struct {
	wk      *walker.Walker
	dl      *fetch.Downloader
	ex      *extract.Extractor
	logger  *slog.Logger
	workers int

	scriptsScanned atomic.Int64
}

// PagesVisited returns the number of pages visited so far by the
// current or most recent Run. Safe to poll concurrently with Run for
// live progress reporting.
func (p *Pipeline) PagesVisited() int64 { return p.wk.PagesVisited() }

// ScriptsScanned returns the number of scripts extracted so far by the
// current or most recent Run. Safe to poll concurrently with Run.
func (p *Pipeline) ScriptsScanned() int64 { return p.scriptsScanned.Load() }

func clampWorkers(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	if n < 2 {
		n = 2
	}
	if n > 32 {
		n = 32
	}
	return n
}

// New builds a Pipeline. client is shared across the walker and
// downloader so cookies and connection pooling persist across the
// whole scan.
func New(client *http.Client, cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	walkerCfg := cfg.Walker
	walkerCfg.Logger = logger
	walkerHeaders := make([]walker.Header, len(cfg.Headers))
	for i, h := range cfg.Headers {
		walkerHeaders[i] = walker.Header{Name: h.Name, Value: h.Value}
	}
	walkerCfg.Headers = walkerHeaders

	return &Pipeline{
		wk:      walker.New(client, walkerCfg),
		dl:      fetch.New(client, cfg.Headers, logger),
		ex:      extract.New(cfg.Catalogue, logger),
		logger:  logger,
		workers: clampWorkers(cfg.Workers),
	}
}

// Run crawls seed, downloads every discovered script exactly once, and
// extracts findings from each, returning once the whole scan completes
// or ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, seed string) (*Result, error) {
	scriptsChan := make(chan model.ScriptRef, scriptsChanCap)
	sourcesChan := make(chan *model.ScriptSource, sourcesChanCap)

	result := &Result{}
	var resultMu sync.Mutex
	var scriptErrs, parseErrs int64

	var walkErr error
	var walkWG sync.WaitGroup
	walkWG.Add(1)
	go func() {
		defer walkWG.Done()
		p.logger.Info("walker stage starting", "seed", seed)
		walkErr = p.wk.Run(ctx, seed, scriptsChan)
		p.logger.Info("walker stage finished", "pages_visited", p.wk.PagesVisited())
	}()

	// Downloader stage: a worker pool deduplicating on ScriptRef.Key()
	// so a script shared across pages is downloaded at most once.
	downloaded := make(map[string]struct{})
	var downloadedMu sync.Mutex
	var dlWG sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		dlWG.Add(1)
		go func() {
			defer dlWG.Done()
			for ref := range scriptsChan {
				key := ref.Key()
				downloadedMu.Lock()
				if _, seen := downloaded[key]; seen {
					downloadedMu.Unlock()
					continue
				}
				downloaded[key] = struct{}{}
				downloadedMu.Unlock()

				src, err := p.dl.Download(ctx, ref)
				if err != nil {
					resultMu.Lock()
					scriptErrs++
					resultMu.Unlock()
					p.logger.Warn("script download failed", "url", ref.Coordinate(), "err", err)
					continue
				}
				if src == nil {
					// Skipped third-party script.
					continue
				}

				select {
				case sourcesChan <- src:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		dlWG.Wait()
		close(sourcesChan)
	}()

	// Extractor stage.
	var exWG sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		exWG.Add(1)
		go func() {
			defer exWG.Done()
			for src := range sourcesChan {
				findings, err := p.ex.Extract(src)
				if err != nil {
					resultMu.Lock()
					parseErrs++
					resultMu.Unlock()
				}

				p.scriptsScanned.Add(1)
				resultMu.Lock()
				result.Findings = append(result.Findings, findings...)
				resultMu.Unlock()
			}
		}()
	}

	walkWG.Wait()
	exWG.Wait()

	result.PagesVisited = p.wk.PagesVisited()
	result.ScriptsScanned = p.scriptsScanned.Load()
	result.PageErrors = p.wk.PageErrors()
	result.ScriptErrors = scriptErrs
	result.ParseErrors = parseErrs

	return result, walkErr
}
