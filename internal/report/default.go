package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/shaniidev/keyhunter/internal/model"
	"github.com/shaniidev/keyhunter/internal/ui"
)

type defaultReporter struct {
	out    io.Writer
	redact bool
}

func (r *defaultReporter) Report(findings []model.Finding, summary Summary) error {
	for _, f := range findings {
		if err := r.reportOne(f); err != nil {
			return err
		}
	}
	return r.reportSummary(summary)
}

func (r *defaultReporter) reportOne(f model.Finding) error {
	secret := f.Secret
	if r.redact {
		secret = redactSecret(secret)
	}

	if _, err := fmt.Fprintf(r.out, "%s%s%s %s\n",
		ui.Bold+ui.Red, f.RuleID, ui.Reset, f.Description); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(r.out, "  %ssecret:%s %s  %sat:%s %s:%d:%d\n",
		ui.Cyan, ui.Reset, secret,
		ui.Cyan, ui.Reset, f.ScriptURL, f.Line, f.Column); err != nil {
		return err
	}

	if f.Identifier != "" {
		if _, err := fmt.Fprintf(r.out, "  %sidentifier:%s %s\n", ui.Cyan, ui.Reset, f.Identifier); err != nil {
			return err
		}
	}

	if frame := codeFrame(f); frame != "" {
		if _, err := fmt.Fprintf(r.out, "  %s\n", frame); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(r.out)
	return err
}

// codeFrame renders a single line of source context around the
// finding's span, skipping lines long enough to be minified rather
// than wrapping them uselessly across the terminal.
func codeFrame(f model.Finding) string {
	line := f.LineText
	if line == "" || len(line) > lineLenThreshold {
		return ""
	}
	return ui.Gray + strings.TrimRight(line, "\r") + ui.Reset
}

func (r *defaultReporter) reportSummary(s Summary) error {
	_, err := fmt.Fprintf(r.out,
		"%s=== scan summary ===%s\n"+
			"pages visited:   %d\n"+
			"scripts scanned: %d\n"+
			"findings:        %d\n"+
			"page errors:     %d\n"+
			"script errors:   %d\n"+
			"parse errors:    %d\n",
		ui.Bold+ui.Blue, ui.Reset,
		s.PagesVisited, s.ScriptsScanned, s.FindingsCount,
		s.PageErrors, s.ScriptErrors, s.ParseErrors,
	)
	return err
}
