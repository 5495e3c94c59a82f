// Command keyhunter crawls a website same-origin, downloads every
// script it finds, and scans each for exposed API keys and other
// secrets.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"time"

	"github.com/shaniidev/keyhunter/internal/catalogue"
	"github.com/shaniidev/keyhunter/internal/config"
	"github.com/shaniidev/keyhunter/internal/fetch"
	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/pipeline"
	"github.com/shaniidev/keyhunter/internal/report"
	"github.com/shaniidev/keyhunter/internal/ui"
	"github.com/shaniidev/keyhunter/internal/walker"
)

const (
	httpTimeout  = 30 * time.Second
	statusPeriod = 200 * time.Millisecond
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.NewConfig()
	if err := cfg.ParseFlags(args, os.Stderr); err != nil {
		ui.Error("%s", err)
		return 2
	}

	logger := newLogger(cfg.LogLevel())

	cat, err := loadCatalogue(cfg.RulesFile)
	if err != nil {
		ui.Error("failed to load rule catalogue: %s", err)
		return 2
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		ui.Error("failed to build cookie jar: %s", err)
		return 2
	}
	client := &http.Client{
		Jar:           jar,
		Timeout:       httpTimeout,
		CheckRedirect: fetch.WithRedirectLimit(),
	}

	headers := make([]fetch.Header, len(cfg.Headers))
	for i, h := range cfg.Headers {
		headers[i] = fetch.Header{Name: h.Name, Value: h.Value}
	}

	p := pipeline.New(client, pipeline.Config{
		Walker: walker.Config{
			MaxPages: cfg.MaxPages,
			MaxDepth: cfg.MaxDepth,
		},
		Headers:   headers,
		Catalogue: cat,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ui.Info("scanning %s", cfg.SeedURL)
	result, runErr := runWithStatus(ctx, p, cfg.SeedURL)
	if runErr != nil {
		logger.Error("scan did not complete", "err", runErr)
		ui.Warning("scan did not complete: %s", runErr)
		if keyerrors.IsFatal(runErr) {
			return 2
		}
	}

	reporter := report.New(cfg.Format, os.Stdout, cfg.Redact)
	if err := reporter.Report(result.Findings, report.Summary{
		PagesVisited:   result.PagesVisited,
		ScriptsScanned: result.ScriptsScanned,
		FindingsCount:  len(result.Findings),
		PageErrors:     result.PageErrors,
		ScriptErrors:   result.ScriptErrors,
		ParseErrors:    result.ParseErrors,
	}); err != nil {
		logger.Error("failed to write report", "err", err)
		return 2
	}

	if runErr == nil {
		ui.Success("scan complete: %d findings across %d scripts", len(result.Findings), result.ScriptsScanned)
	}

	if runErr != nil || result.PageErrors > 0 || result.ScriptErrors > 0 || result.ParseErrors > 0 {
		return 1
	}
	return 0
}

// runWithStatus runs the pipeline while a background ticker mirrors its
// live page/script counters to a single-line status indicator on
// stderr, so a long crawl isn't silent even with logging at "warn".
func runWithStatus(ctx context.Context, p *pipeline.Pipeline, seed string) (*pipeline.Result, error) {
	status := ui.NewScanStatus(os.Stderr, "crawling")
	done := make(chan struct{})
	ticker := time.NewTicker(statusPeriod)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				status.SetPages(p.PagesVisited())
				status.SetScripts(p.ScriptsScanned())
			case <-done:
				return
			}
		}
	}()

	result, err := p.Run(ctx, seed)
	close(done)
	status.SetPages(p.PagesVisited())
	status.SetScripts(p.ScriptsScanned())
	status.Done()

	return result, err
}

func loadCatalogue(path string) (*catalogue.Catalogue, error) {
	if path == "" {
		return catalogue.Default()
	}
	return catalogue.LoadFile(path)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
