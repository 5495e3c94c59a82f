package report

import (
	"encoding/json"
	"io"

	"github.com/shaniidev/keyhunter/internal/model"
)

type jsonReporter struct {
	out io.Writer
}

// jsonFinding is one finding row, matching the field set a prior
// Rust implementation of this scanner serialized plus an added
// description field.
type jsonFinding struct {
	RuleID      string `json:"rule_id"`
	KeyName     string `json:"key_name,omitempty"`
	Secret      string `json:"secret"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	ScriptURL   string `json:"script_url"`
	Description string `json:"description"`
}

type jsonSummary struct {
	PagesVisited   int64 `json:"pages_visited"`
	ScriptsScanned int64 `json:"scripts_scanned"`
	Findings       int   `json:"findings"`
	PageErrors     int64 `json:"page_errors"`
	ScriptErrors   int64 `json:"script_errors"`
	ParseErrors    int64 `json:"parse_errors"`
}

func (r *jsonReporter) Report(findings []model.Finding, summary Summary) error {
	enc := json.NewEncoder(r.out)
	for _, f := range findings {
		row := jsonFinding{
			RuleID:      f.RuleID,
			KeyName:     f.Identifier,
			Secret:      f.Secret,
			Line:        f.Line,
			Column:      f.Column,
			ScriptURL:   f.ScriptURL,
			Description: f.Description,
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
	}

	return enc.Encode(jsonSummary{
		PagesVisited:   summary.PagesVisited,
		ScriptsScanned: summary.ScriptsScanned,
		Findings:       summary.FindingsCount,
		PageErrors:     summary.PageErrors,
		ScriptErrors:   summary.ScriptErrors,
		ParseErrors:    summary.ParseErrors,
	})
}
