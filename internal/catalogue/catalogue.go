// Package catalogue loads and compiles the rule catalogue: a
// gitleaks-style set of patterns used to recognize secrets in
// JavaScript source text.
//
// The catalogue is embedded into the binary as TOML and built once at
// startup into a two-stage matcher: an Aho-Corasick automaton over
// cheap literal keywords (cloudflare/ahocorasick) that prefilters which
// rules are even worth running, and a per-rule lazy-DFA regex
// (coregx/coregex) that confirms and captures the actual secret.
package catalogue

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/cloudflare/ahocorasick"
	"github.com/coregx/coregex"
)

//go:embed rules/*.toml
var defaultRulesFS embed.FS

// AllowlistSpec mirrors a gitleaks rule's allowlist block. Paths is
// parsed for config-format compatibility but never consulted: it names
// source file paths to ignore, which has no counterpart when the thing
// being scanned is a script URL rather than a file in a repository.
type AllowlistSpec struct {
	Regexes   []string
	Paths     []string
	Stopwords []string
}

// KeyRule is one compiled catalogue entry.
type KeyRule struct {
	ID          string
	Description string
	RegexString string
	SecretGroup int
	Entropy     *float64
	Keywords    []string
	Allowlist   AllowlistSpec

	regex          *coregex.Regexp
	mu             *sync.Mutex // coregex's lazy DFA is not safe for concurrent use
	allowlistRegex []*regexp.Regexp
	stopwordsLower []string
}

// rawConfig is the on-disk TOML shape, following the gitleaks config
// format: a title, a top-level allowlist, and a list of rules.
type rawConfig struct {
	Title     string       `toml:"title"`
	Allowlist rawAllowlist `toml:"allowlist"`
	Rules     []rawRule    `toml:"rules"`
}

type rawAllowlist struct {
	Regexes   []string `toml:"regexes"`
	Paths     []string `toml:"paths"`
	StopWords []string `toml:"stopwords"`
}

type rawRule struct {
	ID          string       `toml:"id"`
	Description string       `toml:"description"`
	Regex       string       `toml:"regex"`
	SecretGroup int          `toml:"secretGroup"`
	Entropy     *float64     `toml:"entropy"`
	Keywords    []string     `toml:"keywords"`
	Allowlist   rawAllowlist `toml:"allowlist"`
}

// Catalogue is a compiled, ready-to-match set of rules.
type Catalogue struct {
	rules []*KeyRule

	matcher        *ahocorasick.Matcher
	keywordToRules map[int][]int // index into matcher's keyword list -> rule indices
	fallbackRules  []int         // rules with no usable keyword; always checked
}

// Default loads and compiles the catalogue embedded into the binary.
func Default() (*Catalogue, error) {
	return loadFS(defaultRulesFS, "rules")
}

// LoadFile loads and compiles a catalogue from a single TOML file on
// disk, for the --rules override flag.
func LoadFile(path string) (*Catalogue, error) {
	var raw rawConfig
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("decode catalogue %s: %w", path, err)
	}
	return compile([]rawConfig{raw})
}

func loadFS(fsys fs.FS, dir string) (*Catalogue, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded catalogue dir: %w", err)
	}

	var configs []rawConfig
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		data, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded catalogue %s: %w", entry.Name(), err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode embedded catalogue %s: %w", entry.Name(), err)
		}
		configs = append(configs, raw)
	}

	return compile(configs)
}

func compile(configs []rawConfig) (*Catalogue, error) {
	var rules []*KeyRule

	for _, cfg := range configs {
		for _, rr := range cfg.Rules {
			rule, err := compileRule(rr, cfg.Allowlist)
			if err != nil {
				return nil, fmt.Errorf("compile rule %q: %w", rr.ID, err)
			}
			rules = append(rules, rule)
		}
	}

	c := &Catalogue{
		rules:          rules,
		keywordToRules: make(map[int][]int),
	}
	c.buildEngine()
	return c, nil
}

// compileRule compiles rr into a KeyRule, applying both its own
// allowlist and globalAllowlist (the catalogue file's top-level
// [allowlist] block, which applies to every rule in that file).
func compileRule(rr rawRule, globalAllowlist rawAllowlist) (*KeyRule, error) {
	re, err := coregex.Compile(rr.Regex)
	if err != nil {
		return nil, err
	}

	rule := &KeyRule{
		ID:          rr.ID,
		Description: rr.Description,
		RegexString: rr.Regex,
		SecretGroup: rr.SecretGroup,
		Entropy:     rr.Entropy,
		Keywords:    rr.Keywords,
		Allowlist: AllowlistSpec{
			Regexes:   rr.Allowlist.Regexes,
			Paths:     rr.Allowlist.Paths,
			Stopwords: rr.Allowlist.StopWords,
		},
		regex: re,
		mu:    &sync.Mutex{},
	}

	for _, pat := range append(append([]string{}, rr.Allowlist.Regexes...), globalAllowlist.Regexes...) {
		compiled, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("allowlist regex %q: %w", pat, err)
		}
		rule.allowlistRegex = append(rule.allowlistRegex, compiled)
	}
	for _, sw := range append(append([]string{}, rr.Allowlist.StopWords...), globalAllowlist.StopWords...) {
		rule.stopwordsLower = append(rule.stopwordsLower, strings.ToLower(sw))
	}

	return rule, nil
}

// buildEngine constructs the Aho-Corasick prefilter from each rule's
// explicit keywords (if any) or an auto-extracted literal from its
// regex, falling back to "always check" for rules with no usable
// keyword at all.
func (c *Catalogue) buildEngine() {
	var keywords []string
	seen := make(map[string]int) // keyword -> index into keywords

	addKeyword := func(ruleIdx int, kw string) {
		kw = strings.ToLower(kw)
		idx, ok := seen[kw]
		if !ok {
			idx = len(keywords)
			keywords = append(keywords, kw)
			seen[kw] = idx
		}
		c.keywordToRules[idx] = append(c.keywordToRules[idx], ruleIdx)
	}

	for i, rule := range c.rules {
		hadKeyword := false
		for _, kw := range rule.Keywords {
			if isValidKeyword(kw) {
				addKeyword(i, kw)
				hadKeyword = true
			}
		}
		if !hadKeyword {
			if extracted := extractKeyword(rule.RegexString); isValidKeyword(extracted) {
				addKeyword(i, extracted)
				hadKeyword = true
			}
		}
		if !hadKeyword {
			c.fallbackRules = append(c.fallbackRules, i)
		}
	}

	if len(keywords) > 0 {
		c.matcher = ahocorasick.NewStringMatcher(keywords)
	}
}

// Rules returns the compiled rules in catalogue order.
func (c *Catalogue) Rules() []*KeyRule {
	return c.rules
}

// CandidateRules returns the set of rule indices worth running against
// content: every fallback rule, plus every rule whose keyword was hit
// by the Aho-Corasick prefilter.
func (c *Catalogue) CandidateRules(content []byte) []int {
	candidates := make(map[int]struct{}, len(c.fallbackRules))
	for _, idx := range c.fallbackRules {
		candidates[idx] = struct{}{}
	}

	if c.matcher != nil {
		lower := strings.ToLower(string(content))
		for _, hit := range c.matcher.Match([]byte(lower)) {
			for _, ruleIdx := range c.keywordToRules[hit] {
				candidates[ruleIdx] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(candidates))
	for idx := range candidates {
		out = append(out, idx)
	}
	return out
}

// Match runs rule against content and returns every (captureStart,
// capturedString) pair that passes the rule's entropy and allowlist
// checks. capturedString is the SecretGroup capture if the rule's
// regex defines groups, otherwise the full match.
func (rule *KeyRule) Match(content []byte) []RuleMatch {
	rule.mu.Lock()
	idxs := rule.regex.FindAllSubmatchIndex(content, -1)
	rule.mu.Unlock()

	var matches []RuleMatch
	for _, loc := range idxs {
		group := rule.SecretGroup
		start, end := loc[0], loc[1]
		if 2*group+1 < len(loc) && loc[2*group] >= 0 {
			start, end = loc[2*group], loc[2*group+1]
		}
		secret := string(content[start:end])

		if rule.Entropy != nil && CalculateEntropy(secret) < *rule.Entropy {
			continue
		}
		if rule.isAllowlisted(secret) {
			continue
		}

		matches = append(matches, RuleMatch{Start: start, End: end, Secret: secret})
	}
	return matches
}

// RuleMatch is one confirmed, non-allowlisted match of a KeyRule.
type RuleMatch struct {
	Start  int
	End    int
	Secret string
}

func (rule *KeyRule) isAllowlisted(secret string) bool {
	lower := strings.ToLower(secret)
	for _, sw := range rule.stopwordsLower {
		if strings.Contains(lower, sw) {
			return true
		}
	}
	for _, re := range rule.allowlistRegex {
		if re.MatchString(secret) {
			return true
		}
	}
	return false
}
