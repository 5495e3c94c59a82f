package walker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/model"
)

func TestWalkerSameOriginCrawl(t *testing.T) {
	var mux http.ServeMux
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>
			<a href="/about">about</a>
			<a href="https://external.example.com/page">external</a>
			<script src="/app.js"></script>
			<script>var inline = 1;</script>
		</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body>no links here</body></html>`))
	})

	srv := httptest.NewServer(&mux)
	defer srv.Close()

	wk := New(srv.Client(), Config{Workers: 2})

	scripts := make(chan model.ScriptRef, 16)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := wk.Run(ctx, srv.URL, scripts)
	require.NoError(t, err)

	var collected []model.ScriptRef
	for s := range scripts {
		collected = append(collected, s)
	}

	require.Len(t, collected, 2)
	require.EqualValues(t, 2, wk.PagesVisited())
}

func TestWalkerSeedFetchFailureIsSeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	wk := New(srv.Client(), Config{Workers: 2})
	scripts := make(chan model.ScriptRef, 16)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := wk.Run(ctx, srv.URL, scripts)
	for range scripts {
	}

	require.Error(t, err)
	var seedErr *keyerrors.SeedError
	require.ErrorAs(t, err, &seedErr)
	require.EqualValues(t, 0, wk.PagesVisited())
}

func TestWalkerPageFetchFailureIsNonFatal(t *testing.T) {
	var mux http.ServeMux
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<a href="/broken">broken</a>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(&mux)
	defer srv.Close()

	wk := New(srv.Client(), Config{Workers: 2})
	scripts := make(chan model.ScriptRef, 16)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := wk.Run(ctx, srv.URL, scripts)
	for range scripts {
	}

	require.NoError(t, err)
	require.EqualValues(t, 1, wk.PagesVisited())
	require.EqualValues(t, 1, wk.PageErrors())
}

func TestNormalizeURLSortsQueryAndStripsFragment(t *testing.T) {
	a := normalizeURL("https://example.com/page?b=2&a=1#section")
	b := normalizeURL("https://example.com/page?a=1&b=2")
	require.Equal(t, a, b)
}
