package pmid

import (
	"reflect"
	"testing"
)

func TestFromTextPubMedURL(t *testing.T) {
	t.Parallel()

	id, ok := FromText("https://pubmed.ncbi.nlm.nih.gov/12345678/")
	if !ok {
		t.Fatalf("expected a match")
	}
	if id != "12345678" {
		t.Fatalf("unexpected id: %s", id)
	}
}

func TestFromTextStrictRuleWinsOverBareDigits(t *testing.T) {
	t.Parallel()

	// The path segment before the record URL must not shadow the PMID.
	id, ok := FromText("https://example.com/2024/pubmed.ncbi.nlm.nih.gov/87654321/")
	if !ok || id != "87654321" {
		t.Fatalf("expected 87654321, got %q (ok=%v)", id, ok)
	}
}

func TestFromTextBareDigitFallback(t *testing.T) {
	t.Parallel()

	id, ok := FromText("entry id pubmed:39012345 from feed")
	if !ok || id != "39012345" {
		t.Fatalf("expected 39012345, got %q (ok=%v)", id, ok)
	}
}

func TestFromTextRejectsImplausibleRuns(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"no digits here",
		"123",              // too short
		"12345678901",      // too long
		"version 1.2 beta", // short runs only
	}
	for _, input := range cases {
		if id, ok := FromText(input); ok {
			t.Fatalf("input %q unexpectedly matched %q", input, id)
		}
	}
}

func TestFromCandidatesFirstMatchWins(t *testing.T) {
	t.Parallel()

	id, ok := FromCandidates(
		"no identifier here",
		"https://pubmed.ncbi.nlm.nih.gov/11112222/",
		"https://pubmed.ncbi.nlm.nih.gov/33334444/",
	)
	if !ok || id != "11112222" {
		t.Fatalf("expected first matching candidate, got %q (ok=%v)", id, ok)
	}
}

func TestFromCandidatesDeterministic(t *testing.T) {
	t.Parallel()

	for i := 0; i < 5; i++ {
		id, ok := FromCandidates("ad entry", "https://pubmed.ncbi.nlm.nih.gov/55556666/")
		if !ok || id != "55556666" {
			t.Fatalf("iteration %d: expected 55556666, got %q (ok=%v)", i, id, ok)
		}
	}
}

func TestDedupePreservesFirstSeenOrder(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"3", "1", "3", "2", "1", "2"})
	want := []string{"3", "1", "2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
