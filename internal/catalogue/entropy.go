package catalogue

import "math"

// CalculateEntropy computes the Shannon entropy of s in bits, base-2,
// over its raw bytes rather than its runes. A byte-histogram is used
// instead of decoding runes because secret material (API keys, tokens)
// is effectively always ASCII, and entropy computed over bytes matches
// the algorithm the catalogue's gitleaks-style entropy thresholds were
// tuned against.
func CalculateEntropy(s string) float64 {
	if len(s) == 0 {
		return 0
	}

	var counts [256]int
	for i := 0; i < len(s); i++ {
		counts[s[i]]++
	}

	var entropy float64
	total := float64(len(s))
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}

	return entropy
}
