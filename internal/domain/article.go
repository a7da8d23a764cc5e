package domain

import "strings"

// PubMedLinkBase is the canonical record URL prefix for bibliographic links.
const PubMedLinkBase = "https://pubmed.ncbi.nlm.nih.gov/"

// DOILinkBase resolves external cross-reference identifiers.
const DOILinkBase = "https://doi.org/"

// Category partitions feed sources and the emitted documents.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Article is the central entity, built up progressively during a run.
type Article struct {
	PMID     string   `json:"pmid"`
	DOI      string   `json:"doi,omitempty"`
	Title    string   `json:"title"`
	Journal  string   `json:"journal"`
	PubDate  string   `json:"pubdate"`
	PubTypes []string `json:"pubtypes"`

	Entity     string `json:"entity"`
	TrialType  string `json:"trial_type,omitempty"`
	StudyClass string `json:"study_class"`

	IsOA        *bool    `json:"is_oa,omitempty"`
	OAURL       string   `json:"oa_url,omitempty"`
	MetricName  string   `json:"metric_name,omitempty"`
	MetricValue *float64 `json:"metric_value,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`

	URLPubMed string `json:"url_pubmed"`
	URLDOI    string `json:"url_doi,omitempty"`

	// CategoryKey is fixed at identifier-extraction time: the first
	// category whose feed surfaced the PMID owns the article.
	CategoryKey string `json:"-"`
}

// DedupKey collapses duplicates: DOI first, then PMID, then a
// title+date composite for records lacking both.
func (a Article) DedupKey() string {
	if a.DOI != "" {
		return "doi:" + a.DOI
	}
	if a.PMID != "" {
		return "pmid:" + a.PMID
	}
	return "fallback:" + a.Title + "|" + a.PubDate
}

// RankMetric treats a missing metric as -1 so metric-free articles
// sort below any scored one.
func (a Article) RankMetric() float64 {
	if a.MetricValue == nil {
		return -1
	}
	return *a.MetricValue
}

// Document is one emitted JSON artifact.
type Document struct {
	Generated  string     `json:"generated"`
	Items      []Article  `json:"items"`
	Categories []Category `json:"categories,omitempty"`
}

// Summary carries the bibliographic fields returned per PMID by the
// remote summary service.
type Summary struct {
	PMID     string
	Title    string
	Journal  string
	PubDate  string
	PubTypes []string
	DOI      string
}

// MetricTable maps a normalized journal name to its quality score.
type MetricTable map[string]float64

// NormalizeJournal builds the lookup key used by the metric table.
func NormalizeJournal(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup normalizes the journal name the same way the loader builds keys.
func (t MetricTable) Lookup(journal string) (float64, bool) {
	v, ok := t[NormalizeJournal(journal)]
	return v, ok
}
