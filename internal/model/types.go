// Package model holds the data types shared across KeyHunter's pipeline
// stages: the crawl, the download, and the extraction.
package model

import "fmt"

// ScriptRef identifies a piece of JavaScript discovered during a crawl,
// before it has been downloaded or materialized.
type ScriptRef struct {
	// External is set when the script was loaded from a <script src="...">
	// attribute. URL is absolute.
	External *ExternalScript

	// Inline is set when the script was an inline <script>...</script>
	// body found directly in an HTML page.
	Inline *InlineScript
}

// ExternalScript is a ScriptRef pointing at a separately hosted file.
type ExternalScript struct {
	URL string
}

// InlineScript is a ScriptRef for a <script> body embedded in a page.
// Index is the zero-based position of the script among all accepted
// <script> elements on PageURL (external and inline alike), used to
// synthesize a stable coordinate.
type InlineScript struct {
	PageURL string
	Index   int
	Body    string
}

// Key returns a stable, unique string identifying this ScriptRef, used
// as the dedup key so each distinct script is downloaded at most once.
func (r ScriptRef) Key() string {
	switch {
	case r.External != nil:
		return "ext:" + r.External.URL
	case r.Inline != nil:
		return fmt.Sprintf("inline:%s#%d", r.Inline.PageURL, r.Inline.Index)
	default:
		return ""
	}
}

// Coordinate returns the URL-shaped string used to label findings and
// reports: the real URL for external scripts, or a synthetic
// "<page-url>#script-<n>" coordinate for inline scripts.
func (r ScriptRef) Coordinate() string {
	switch {
	case r.External != nil:
		return r.External.URL
	case r.Inline != nil:
		return fmt.Sprintf("%s#script-%d", r.Inline.PageURL, r.Inline.Index)
	default:
		return ""
	}
}

// ScriptSource is the materialized form of a ScriptRef: the source text
// ready for extraction, plus enough metadata to report on it.
type ScriptSource struct {
	Ref         ScriptRef
	Body        []byte
	ContentType string
}

// Finding is a single secret detected in one ScriptSource.
type Finding struct {
	RuleID      string
	Description string
	Secret      string
	// Identifier is the nearest enclosing named context the secret was
	// assigned to or passed through (a variable name, object property,
	// or similar). Empty when no such context could be determined.
	Identifier string
	ScriptURL   string
	Span        Span
	Line        int
	Column      int
	// LineText is the full source line the finding's span falls on,
	// used to render a one-line code frame in report output.
	LineText string
}

// Span is a byte-offset range into a script's source text.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}
