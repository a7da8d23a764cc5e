// Package pmid extracts PubMed identifiers from heterogeneous feed
// entry fields. Extraction is deterministic: the same input always
// yields the same identifier or always none.
package pmid

import "regexp"

// pubmedURLExpr matches the canonical record URL carrying a 4-10 digit
// identifier, e.g. https://pubmed.ncbi.nlm.nih.gov/12345678/.
var pubmedURLExpr = regexp.MustCompile(`pubmed\.ncbi\.nlm\.nih\.gov/(\d{4,10})(?:[/?#]|$)`)

// bareIDExpr is the generic fallback: any digit run of plausible PMID
// length bounded by non-digits.
var bareIDExpr = regexp.MustCompile(`(?:^|\D)(\d{4,10})(?:\D|$)`)

// FromText applies the strict URL rule first, then the bare-digit
// fallback. Returns false when the string holds no plausible identifier.
func FromText(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	if m := pubmedURLExpr.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	if m := bareIDExpr.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// FromCandidates walks candidate strings in priority order and stops at
// the first one that yields a match. No match is not an error: feed
// noise, ads and non-article entries are dropped silently upstream.
func FromCandidates(candidates ...string) (string, bool) {
	for _, cand := range candidates {
		if id, ok := FromText(cand); ok {
			return id, true
		}
	}
	return "", false
}

// Dedupe removes repeats while preserving first-seen order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
