// Package keyerrors defines KeyHunter's fatal/non-fatal error taxonomy.
// cmd/keyhunter inspects which kind an error is to decide the process
// exit code: fatal errors abort the scan and exit 2, non-fatal errors
// are logged, counted, and let the scan continue, yielding exit 1 if
// any occurred.
package keyerrors

import "fmt"

// ConfigError signals invalid CLI configuration. Fatal.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// SeedError signals the seed URL itself could not be fetched or parsed.
// Fatal.
type SeedError struct {
	URL   string
	Cause error
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seed error for %s: %v", e.URL, e.Cause)
}

func (e *SeedError) Unwrap() error { return e.Cause }

// PageError signals a crawled page could not be fetched or parsed.
// Non-fatal: the walker skips the page and continues.
type PageError struct {
	URL   string
	Cause error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page error for %s: %v", e.URL, e.Cause)
}

func (e *PageError) Unwrap() error { return e.Cause }

// ScriptError signals a script could not be downloaded. Non-fatal.
type ScriptError struct {
	URL   string
	Cause error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script error for %s: %v", e.URL, e.Cause)
}

func (e *ScriptError) Unwrap() error { return e.Cause }

// ParseError signals a script failed to parse as JavaScript. Non-fatal:
// extraction falls back to regex-only findings with no identifier
// enrichment.
type ParseError struct {
	URL   string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ExtractError signals an unexpected failure while scanning a script's
// source text for secrets (as opposed to a parse failure). Non-fatal.
type ExtractError struct {
	URL   string
	Cause error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract error for %s: %v", e.URL, e.Cause)
}

func (e *ExtractError) Unwrap() error { return e.Cause }

// IsFatal reports whether err belongs to a fatal error class.
func IsFatal(err error) bool {
	switch err.(type) {
	case *ConfigError, *SeedError:
		return true
	default:
		return false
	}
}
