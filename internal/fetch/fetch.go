// Package fetch turns a model.ScriptRef discovered by the walker into
// a model.ScriptSource ready for extraction: inline bodies materialize
// directly, external scripts are downloaded once with no retries and
// a hard byte cap enforced in memory.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/model"
)

// MaxScriptBytes is the hard size cap on downloaded script bodies.
const MaxScriptBytes = 5 * 1024 * 1024

// MaxRedirects is the maximum number of redirect hops followed when
// downloading a script.
const MaxRedirects = 10

// Downloader fetches script bodies over HTTP.
type Downloader struct {
	client  *http.Client
	headers []Header
	logger  *slog.Logger
}

// Header is one extra request header applied to every download.
type Header struct {
	Name  string
	Value string
}

// New builds a Downloader sharing client with the walker, so cookies
// and connection pooling are shared across the whole scan.
func New(client *http.Client, headers []Header, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, headers: headers, logger: logger}
}

// Download materializes ref into a ScriptSource. Inline scripts are
// materialized directly from their already-known body; external
// scripts are fetched over HTTP, capped at MaxScriptBytes, with no
// retries on failure.
func (d *Downloader) Download(ctx context.Context, ref model.ScriptRef) (*model.ScriptSource, error) {
	if ref.Inline != nil {
		return &model.ScriptSource{
			Ref:         ref,
			Body:        []byte(ref.Inline.Body),
			ContentType: "text/javascript",
		}, nil
	}

	url := ref.External.URL
	if ShouldSkipThirdParty(url) {
		d.logger.Debug("skipping third-party script", "url", url)
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &keyerrors.ScriptError{URL: url, Cause: err}
	}
	d.applyHeaders(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &keyerrors.ScriptError{URL: url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &keyerrors.ScriptError{URL: url, Cause: fmt.Errorf("http status %d", resp.StatusCode)}
	}

	limited := io.LimitReader(resp.Body, MaxScriptBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, &keyerrors.ScriptError{URL: url, Cause: err}
	}
	if len(data) > MaxScriptBytes {
		return nil, &keyerrors.ScriptError{URL: url, Cause: fmt.Errorf("script exceeds %d byte cap", MaxScriptBytes)}
	}

	return &model.ScriptSource{
		Ref:         ref,
		Body:        []byte(lossyUTF8(data)),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (d *Downloader) applyHeaders(req *http.Request) {
	for _, h := range d.headers {
		req.Header.Set(h.Name, h.Value)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", "keyhunter/1.0 (+https://github.com/shaniidev/keyhunter)")
	}
}

// WithRedirectLimit returns an http.Client.CheckRedirect function that
// stops following redirects after MaxRedirects hops.
func WithRedirectLimit() func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= MaxRedirects {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}
}

// lossyUTF8 decodes b as UTF-8, replacing invalid sequences with the
// Unicode replacement character rather than failing.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
