// Package report renders a completed scan's findings, either as a
// colorized terminal report with a short source-context frame, as
// newline-delimited JSON, or as a single YAML document.
package report

import (
	"io"

	"github.com/shaniidev/keyhunter/internal/model"
)

// lineLenThreshold is the line-length past which a source line is
// considered minified and its code frame is skipped rather than
// printed wrapped across the terminal.
const lineLenThreshold = 200

// Reporter renders a batch of findings plus the scan summary.
type Reporter interface {
	Report(findings []model.Finding, summary Summary) error
}

// Summary is the trailing totals line printed after all findings.
type Summary struct {
	PagesVisited   int64
	ScriptsScanned int64
	FindingsCount  int
	PageErrors     int64
	ScriptErrors   int64
	ParseErrors    int64
}

// New returns the Reporter named by format ("default", "json", or
// "yaml"), writing to out. redact masks secrets in the default
// reporter's output; it has no effect on the json or yaml reporters.
func New(format string, out io.Writer, redact bool) Reporter {
	switch format {
	case "json":
		return &jsonReporter{out: out}
	case "yaml":
		return &yamlReporter{out: out}
	default:
		return &defaultReporter{out: out, redact: redact}
	}
}

// redactSecret keeps the first 4 characters of secret and masks the
// rest with bullet characters, preserving length so the report still
// hints at the secret's shape without disclosing it.
func redactSecret(secret string) string {
	runes := []rune(secret)
	if len(runes) <= 4 {
		return secret
	}
	visible := string(runes[:4])
	masked := make([]rune, len(runes)-4)
	for i := range masked {
		masked[i] = '•'
	}
	return visible + string(masked)
}
