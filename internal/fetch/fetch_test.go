package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/model"
)

func TestDownloadExternalScript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`console.log("hi");`))
	}))
	defer srv.Close()

	d := New(srv.Client(), nil, nil)
	src, err := d.Download(context.Background(), model.ScriptRef{External: &model.ExternalScript{URL: srv.URL + "/app.js"}})
	require.NoError(t, err)
	require.NotNil(t, src)
	require.Equal(t, `console.log("hi");`, string(src.Body))
}

func TestDownloadEnforcesSizeCap(t *testing.T) {
	big := strings.Repeat("a", MaxScriptBytes+1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(big))
	}))
	defer srv.Close()

	d := New(srv.Client(), nil, nil)
	src, err := d.Download(context.Background(), model.ScriptRef{External: &model.ExternalScript{URL: srv.URL}})
	require.Nil(t, src)
	require.Error(t, err)

	var scriptErr *keyerrors.ScriptError
	require.ErrorAs(t, err, &scriptErr)
}

func TestDownloadInlineScriptNeverHitsNetwork(t *testing.T) {
	d := New(http.DefaultClient, nil, nil)
	src, err := d.Download(context.Background(), model.ScriptRef{
		Inline: &model.InlineScript{PageURL: "https://example.com/", Index: 0, Body: "var x = 1;"},
	})
	require.NoError(t, err)
	require.Equal(t, "var x = 1;", string(src.Body))
}

func TestShouldSkipThirdParty(t *testing.T) {
	require.True(t, ShouldSkipThirdParty("https://www.googletagmanager.com/gtm.js"))
	require.True(t, ShouldSkipThirdParty("https://cdn.jsdelivr.net/npm/react@18/index.js"))
	require.False(t, ShouldSkipThirdParty("https://example.com/app.js"))
}
