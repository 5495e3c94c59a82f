package report

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shaniidev/keyhunter/internal/model"
)

type yamlReporter struct {
	out io.Writer
}

// yamlDocument is a single structured dump of the scan, emitted as one
// YAML document rather than one row per finding: unlike the json
// reporter's streaming rows, this is meant for piping into other
// tooling that expects one parseable document per scan.
type yamlDocument struct {
	Findings []yamlFinding `yaml:"findings"`
	Summary  yamlSummary   `yaml:"summary"`
}

type yamlFinding struct {
	RuleID      string `yaml:"rule_id"`
	KeyName     string `yaml:"key_name,omitempty"`
	Secret      string `yaml:"secret"`
	Line        int    `yaml:"line"`
	Column      int    `yaml:"column"`
	ScriptURL   string `yaml:"script_url"`
	Description string `yaml:"description"`
}

type yamlSummary struct {
	PagesVisited   int64 `yaml:"pages_visited"`
	ScriptsScanned int64 `yaml:"scripts_scanned"`
	Findings       int   `yaml:"findings"`
	PageErrors     int64 `yaml:"page_errors"`
	ScriptErrors   int64 `yaml:"script_errors"`
	ParseErrors    int64 `yaml:"parse_errors"`
}

func (r *yamlReporter) Report(findings []model.Finding, summary Summary) error {
	doc := yamlDocument{
		Findings: make([]yamlFinding, len(findings)),
		Summary: yamlSummary{
			PagesVisited:   summary.PagesVisited,
			ScriptsScanned: summary.ScriptsScanned,
			Findings:       summary.FindingsCount,
			PageErrors:     summary.PageErrors,
			ScriptErrors:   summary.ScriptErrors,
			ParseErrors:    summary.ParseErrors,
		},
	}
	for i, f := range findings {
		doc.Findings[i] = yamlFinding{
			RuleID:      f.RuleID,
			KeyName:     f.Identifier,
			Secret:      f.Secret,
			Line:        f.Line,
			Column:      f.Column,
			ScriptURL:   f.ScriptURL,
			Description: f.Description,
		}
	}

	enc := yaml.NewEncoder(r.out)
	defer enc.Close()
	return enc.Encode(doc)
}
