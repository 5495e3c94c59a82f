package walker

import (
	"net/url"
	"sort"
	"strings"
	"sync"
)

// visitedSet is a concurrency-safe set of normalized page URLs, used
// to ensure a URL is enqueued for crawling at most once.
type visitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[string]struct{})}
}

// markIfNew normalizes raw and returns true the first time it's seen.
func (v *visitedSet) markIfNew(raw string) bool {
	key := normalizeURL(raw)
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

// normalizeURL builds the visited-set dedup key for a URL: fragment is
// stripped, query parameters are sorted, and an empty path is
// normalized to "/".
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""

	if u.Path == "" {
		u.Path = "/"
	}

	if u.RawQuery != "" {
		values := u.Query()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var sb strings.Builder
		for i, k := range keys {
			vals := values[k]
			sort.Strings(vals)
			for j, v := range vals {
				if i > 0 || j > 0 {
					sb.WriteByte('&')
				}
				sb.WriteString(k)
				sb.WriteByte('=')
				sb.WriteString(v)
			}
		}
		u.RawQuery = sb.String()
	}

	return u.String()
}
