package walker

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// pageLinks holds everything extracted from one HTML page relevant to
// the crawl: links to follow and scripts to hand off to the
// downloader. Forms, images, and meta tags are ignored entirely.
type pageLinks struct {
	links   []string
	scripts []scriptTag
}

// scriptTag is a <script> element found on a page, before it's been
// classified as external or inline.
type scriptTag struct {
	src    string // empty if inline
	body   string // only set when src is empty
	typeAt string
}

// acceptedScriptTypes filters <script type="..."> attributes: scripts
// with no type attribute, or an explicitly JS/module type, are
// accepted; anything else (application/json, application/ld+json, a
// custom templating type, ...) is skipped.
func acceptedScriptTypes(t string) bool {
	if t == "" {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "text/javascript", "application/javascript", "module":
		return true
	default:
		return false
	}
}

func parsePage(body io.Reader, base *url.URL) (*pageLinks, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	result := &pageLinks{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				if href := attr(n, "href"); href != "" {
					if resolved := resolveHref(base, href); resolved != "" {
						result.links = append(result.links, resolved)
					}
				}
			case "script":
				typeAt := attr(n, "type")
				if !acceptedScriptTypes(typeAt) {
					break
				}
				if src := attr(n, "src"); src != "" {
					if resolved := resolveHref(base, src); resolved != "" {
						result.scripts = append(result.scripts, scriptTag{src: resolved, typeAt: typeAt})
					}
					break
				}
				if body := inlineText(n); strings.TrimSpace(body) != "" {
					result.scripts = append(result.scripts, scriptTag{body: body, typeAt: typeAt})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}

func inlineText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// skipSchemePrefixes are hrefs the walker never follows: they aren't
// resources that can be resolved as an http(s) page at all.
var skipSchemePrefixes = []string{"mailto:", "javascript:", "data:", "tel:", "blob:"}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range skipSchemePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String()
}

var bannedLinkExtensions = []string{
	".pdf", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico",
	".zip", ".tar", ".gz", ".mp4", ".mp3", ".woff", ".woff2", ".ttf",
	".css",
}

func hasBannedExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	lower := strings.ToLower(u.Path)
	for _, ext := range bannedLinkExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
