package fetch

import (
	"net/url"
	"strings"
)

// skipDomains lists well-known third-party hosts whose scripts are
// known not to carry application secrets.
var skipDomains = []string{
	"ajax.googleapis.com",
	"apis.google.com",
	"www.googletagmanager.com",
	"googletagmanager.com",
	"google-analytics.com",
	"www.google-analytics.com",
	"assets.calendly.com",
	"cdn.jsdelivr.net",
	"unpkg.com",
	"events.framer.com",
	"cdnjs.cloudflare.com",
	"code.jquery.com",
	"maxcdn.bootstrapcdn.com",
	"stackpath.bootstrapcdn.com",
	"connect.facebook.net",
	"sentry.io",
	"js.sentry-cdn.com",
}

// skipPathSubstrings lists path substrings of well-known library files.
var skipPathSubstrings = []string{
	"/jquery", "/react", "/lodash", "/bootstrap", "/modernizr",
}

// ShouldSkipThirdParty reports whether rawURL points at a well-known
// third-party library or analytics script, known not to carry
// application secrets. Such scripts are skipped before they're even
// downloaded.
func ShouldSkipThirdParty(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range skipDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}

	lowerPath := strings.ToLower(u.Path)
	for _, p := range skipPathSubstrings {
		if strings.Contains(lowerPath, p) {
			return true
		}
	}
	return false
}
