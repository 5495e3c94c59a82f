package catalogue

import (
	"regexp/syntax"
	"strings"
)

// extractKeyword analyzes a regex pattern and returns the longest literal
// string that must be present for the regex to match. Returns "" if no
// such literal exists. Used to seed the Aho-Corasick prefilter for rules
// that don't supply explicit keywords.
func extractKeyword(regexStr string) string {
	re, err := syntax.Parse(regexStr, syntax.Perl)
	if err != nil {
		return ""
	}
	return findBestLiteral(re)
}

func findBestLiteral(re *syntax.Regexp) string {
	switch re.Op {
	case syntax.OpLiteral:
		return string(re.Rune)
	case syntax.OpConcat:
		var best string
		for _, sub := range re.Sub {
			candidate := findBestLiteral(sub)
			if len(candidate) > len(best) {
				best = candidate
			}
		}
		return best

	case syntax.OpCapture:
		return findBestLiteral(re.Sub[0])

	case syntax.OpPlus: // A+ -> A is required
		return findBestLiteral(re.Sub[0])

	case syntax.OpRepeat: // A{3,5} -> A is required when min > 0
		if re.Min > 0 {
			return findBestLiteral(re.Sub[0])
		}
		return ""

	default:
		return ""
	}
}

// commonKeywords maps lowercased candidate keywords to whether they
// should be rejected as too generic to usefully index. Brand names
// (stripe, slack, github, ...) are explicitly kept: they're common
// English-adjacent words but rare enough in arbitrary JS to be good
// discriminators.
var commonKeywords = map[string]bool{
	"http": true, "https": true, "application": true, "password": true,
	"username": true, "token": true, "key": true, "auth": true,
	"bearer": true, "private": true, "public": true, "secret": true,
	"access": true,
}

// isValidKeyword checks whether a candidate keyword is worth indexing
// in the Aho-Corasick prefilter.
func isValidKeyword(kw string) bool {
	if len(kw) < 4 {
		return false
	}
	if commonKeywords[strings.ToLower(kw)] {
		return false
	}
	if isRepetitive(kw) {
		return false
	}
	return true
}

func isRepetitive(s string) bool {
	if len(s) == 0 {
		return false
	}
	first := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != first {
			return false
		}
	}
	return true
}
