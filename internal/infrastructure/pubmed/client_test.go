package pubmed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const summaryFixture = `{
  "result": {
    "uids": ["11111111", "22222222"],
    "11111111": {
      "uid": "11111111",
      "title": "Osimertinib in resected NSCLC.",
      "fulljournalname": "The New England Journal of Medicine",
      "source": "N Engl J Med",
      "sortpubdate": "2024/06/05 00:00",
      "epubdate": "2024 Jun 1",
      "pubdate": "2024 Jun",
      "pubtype": ["Journal Article", "Randomized Controlled Trial"],
      "articleids": [
        {"idtype": "pubmed", "value": "11111111"},
        {"idtype": "doi", "value": "10.1056/test123"},
        {"idtype": "pii", "value": "S0000"}
      ]
    },
    "22222222": {
      "uid": "22222222",
      "title": "Mesothelioma case series.",
      "source": "J Thorac Oncol",
      "epubdate": "2024 Jun 3",
      "pubtype": [{"pubtype": "Journal Article"}],
      "articleids": []
    }
  }
}`

func TestSummariesParsesRecords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/esummary.fcgi") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("db") != "pubmed" || q.Get("retmode") != "json" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("email") != "digest@example.org" {
			t.Errorf("missing courtesy email: %v", q)
		}
		_, _ = w.Write([]byte(summaryFixture))
	}))
	defer server.Close()

	c := NewClient(server.Client(), "digest@example.org", nil).WithBaseURL(server.URL)
	c.delay = 0

	got, err := c.Summaries(context.Background(), []string{"11111111", "22222222"})
	if err != nil {
		t.Fatalf("Summaries error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}

	first := got["11111111"]
	if first.Title != "Osimertinib in resected NSCLC." {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Journal != "The New England Journal of Medicine" {
		t.Fatalf("full journal name should win: %s", first.Journal)
	}
	if first.PubDate != "2024-06-05T00:00:00Z" {
		t.Fatalf("sort date should win and normalize to ISO: %s", first.PubDate)
	}
	if first.DOI != "10.1056/test123" {
		t.Fatalf("expected the doi articleid, got %s", first.DOI)
	}
	if len(first.PubTypes) != 2 || first.PubTypes[1] != "Randomized Controlled Trial" {
		t.Fatalf("unexpected pubtypes: %v", first.PubTypes)
	}

	second := got["22222222"]
	if second.Journal != "J Thorac Oncol" {
		t.Fatalf("abbreviated source fallback failed: %s", second.Journal)
	}
	if second.PubDate != "2024-06-03T00:00:00Z" {
		t.Fatalf("epubdate fallback failed: %s", second.PubDate)
	}
	if second.DOI != "" {
		t.Fatalf("no doi expected, got %s", second.DOI)
	}
	if len(second.PubTypes) != 1 || second.PubTypes[0] != "Journal Article" {
		t.Fatalf("structured pubtype form not handled: %v", second.PubTypes)
	}
}

func TestSummariesBatchesRequests(t *testing.T) {
	t.Parallel()

	var batchSizes []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		batchSizes = append(batchSizes, len(ids))
		_, _ = w.Write([]byte(`{"result":{"uids":[]}}`))
	}))
	defer server.Close()

	c := NewClient(server.Client(), "digest@example.org", nil).WithBaseURL(server.URL)
	c.delay = 0

	pmids := make([]string, 400)
	for i := range pmids {
		pmids[i] = "10000000"
	}

	if _, err := c.Summaries(context.Background(), pmids); err != nil {
		t.Fatalf("Summaries error: %v", err)
	}

	if len(batchSizes) != 3 {
		t.Fatalf("expected 3 batches for 400 ids, got %d", len(batchSizes))
	}
	for i, size := range batchSizes {
		if size > maxBatch {
			t.Fatalf("batch %d exceeds limit: %d", i, size)
		}
	}
	if batchSizes[0] != 180 || batchSizes[1] != 180 || batchSizes[2] != 40 {
		t.Fatalf("unexpected batch partition: %v", batchSizes)
	}
}

func TestSummariesHTTPFailureIsFatal(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(server.Client(), "digest@example.org", nil).WithBaseURL(server.URL)
	c.delay = 0

	if _, err := c.Summaries(context.Background(), []string{"123456"}); err == nil {
		t.Fatalf("expected a fatal error on HTTP failure")
	}
}

const efetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>11111111</PMID>
      <Article>
        <Abstract>
          <AbstractText Label="BACKGROUND">Resection alone is insufficient.</AbstractText>
          <AbstractText Label="METHODS">Randomized 1:1.</AbstractText>
          <AbstractText Label="RESULTS">DFS improved.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>22222222</PMID>
      <Article>
        <Abstract>
          <AbstractText>Plain unstructured abstract.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestAbstractsParsesSections(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/efetch.fcgi") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(efetchFixture))
	}))
	defer server.Close()

	c := NewClient(server.Client(), "digest@example.org", nil).WithBaseURL(server.URL)
	c.delay = 0

	got, err := c.Abstracts(context.Background(), []string{"11111111", "22222222"})
	if err != nil {
		t.Fatalf("Abstracts error: %v", err)
	}

	want := "BACKGROUND: Resection alone is insufficient.\n\nMETHODS: Randomized 1:1.\n\nRESULTS: DFS improved."
	if got["11111111"] != want {
		t.Fatalf("labeled sections not preserved:\n%q", got["11111111"])
	}
	if got["22222222"] != "Plain unstructured abstract." {
		t.Fatalf("unlabeled abstract broken: %q", got["22222222"])
	}
}

func TestAbstractsMalformedBatchIsSkipped(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not the record set</html"))
	}))
	defer server.Close()

	c := NewClient(server.Client(), "digest@example.org", nil).WithBaseURL(server.URL)
	c.delay = 0

	got, err := c.Abstracts(context.Background(), []string{"11111111"})
	if err != nil {
		t.Fatalf("a malformed batch must not be fatal: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no abstracts, got %v", got)
	}
}

func TestNormalizeDateRetainsRawOnFailure(t *testing.T) {
	t.Parallel()

	if got := NormalizeDate("2024/06/05 00:00"); got != "2024-06-05T00:00:00Z" {
		t.Fatalf("unexpected normalization: %s", got)
	}
	if got := NormalizeDate("2024 Jun 5"); got != "2024-06-05T00:00:00Z" {
		t.Fatalf("unexpected normalization: %s", got)
	}
	if got := NormalizeDate("ahead of print"); got != "ahead of print" {
		t.Fatalf("raw string must be retained: %s", got)
	}
	if got := NormalizeDate(""); got != "" {
		t.Fatalf("empty stays empty: %q", got)
	}
}
