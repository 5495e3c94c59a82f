// Package extract scans one script's source text for secrets against
// the rule catalogue, then enriches each finding with the nearest
// enclosing named context via a separate JavaScript AST pass.
//
// The two passes are independent and merged back together by byte
// span: a parse failure only costs the enrichment, never the
// underlying finding.
package extract

import (
	"log/slog"
	"sort"

	"github.com/dop251/goja/parser"

	"github.com/shaniidev/keyhunter/internal/catalogue"
	"github.com/shaniidev/keyhunter/internal/extract/identwalk"
	"github.com/shaniidev/keyhunter/internal/keyerrors"
	"github.com/shaniidev/keyhunter/internal/model"
)

// Extractor scans ScriptSources against a Catalogue.
type Extractor struct {
	cat    *catalogue.Catalogue
	logger *slog.Logger
}

// New builds an Extractor backed by cat.
func New(cat *catalogue.Catalogue, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cat: cat, logger: logger}
}

// Extract scans src and returns every Finding, deduplicated on
// (RuleID, Secret, Span) and ordered ascending by Span.Start then
// RuleID. A parse failure is logged and non-fatal: the returned
// findings simply carry no Identifier.
func (x *Extractor) Extract(src *model.ScriptSource) ([]model.Finding, error) {
	content := src.Body
	coordinate := src.Ref.Coordinate()

	raw := x.regexPass(content)

	literals, parseErr := x.astPass(content, coordinate)
	if parseErr != nil {
		x.logger.Warn("javascript parse failed, falling back to regex-only findings",
			"url", coordinate, "err", parseErr)
	}

	enrich(raw, literals)

	findings := dedupeAndOrder(raw, coordinate)

	idx := buildLineIndex(content)
	for i := range findings {
		line, col := idx.position(findings[i].Span.Start)
		findings[i].Line = line
		findings[i].Column = col
		findings[i].LineText = idx.lineText(findings[i].Span.Start)
	}

	var err error
	if parseErr != nil {
		err = &keyerrors.ParseError{URL: coordinate, Cause: parseErr}
	}
	return findings, err
}

// rawFinding is a regex-confirmed match before AST enrichment and
// deduplication.
type rawFinding struct {
	ruleID      string
	description string
	secret      string
	identifier  string
	span        model.Span
}

func (x *Extractor) regexPass(content []byte) []rawFinding {
	var out []rawFinding
	for _, idx := range x.cat.CandidateRules(content) {
		rule := x.cat.Rules()[idx]
		for _, m := range rule.Match(content) {
			out = append(out, rawFinding{
				ruleID:      rule.ID,
				description: rule.Description,
				secret:      m.Secret,
				span:        model.Span{Start: m.Start, End: m.End},
			})
		}
	}
	return out
}

func (x *Extractor) astPass(content []byte, coordinate string) ([]identwalk.Literal, error) {
	src := string(content)

	prog, err := parser.ParseFile(nil, coordinate, src, 0)
	if err != nil {
		return nil, err
	}

	return identwalk.Walk(prog), nil
}

// enrich assigns each rawFinding the Identifier of the literal whose
// span contains it, if any.
func enrich(findings []rawFinding, literals []identwalk.Literal) {
	for i := range findings {
		for _, lit := range literals {
			if lit.Start <= findings[i].span.Start && findings[i].span.End <= lit.End {
				findings[i].identifier = lit.Identifier
				break
			}
		}
	}
}

func dedupeAndOrder(raw []rawFinding, coordinate string) []model.Finding {
	type key struct {
		ruleID string
		secret string
		start  int
		end    int
	}
	seen := make(map[key]struct{}, len(raw))

	findings := make([]model.Finding, 0, len(raw))
	for _, r := range raw {
		k := key{r.ruleID, r.secret, r.span.Start, r.span.End}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}

		findings = append(findings, model.Finding{
			RuleID:      r.ruleID,
			Description: r.description,
			Secret:      r.secret,
			Identifier:  r.identifier,
			ScriptURL:   coordinate,
			Span:        r.span,
		})
	}

	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Span.Start != findings[j].Span.Start {
			return findings[i].Span.Start < findings[j].Span.Start
		}
		return findings[i].RuleID < findings[j].RuleID
	})

	return findings
}
