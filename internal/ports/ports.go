package ports

import (
	"context"
	"time"

	"oncodigest/internal/domain"
)

// PMIDSource collects publication identifiers from one feed URL, in
// first-seen order with per-feed deduplication already applied.
type PMIDSource interface {
	CollectPMIDs(ctx context.Context, feedURL string) ([]string, error)
}

// SummaryService batch-retrieves bibliographic summaries keyed by PMID.
// A transport or HTTP failure is fatal for the run: metadata is
// load-bearing for every downstream step.
type SummaryService interface {
	Summaries(ctx context.Context, pmids []string) (map[string]domain.Summary, error)
}

// AbstractService batch-retrieves abstract text keyed by PMID. Batches
// that fail to parse are skipped, so the map may be partial.
type AbstractService interface {
	Abstracts(ctx context.Context, pmids []string) (map[string]string, error)
}

// OpenAccessResolver looks up open-access status for one external
// identifier. It never returns an error: failures degrade to unknown.
type OpenAccessResolver interface {
	Resolve(ctx context.Context, doi string) domain.OAResult
}

// MetricLoader produces the journal-quality table. It is invoked once
// per run and may return an empty table (metric-free run), never an error.
type MetricLoader interface {
	Load() domain.MetricTable
}

// DocumentWriter persists the emitted artifacts. The primary document
// must exist after every run, even when it carries no items.
type DocumentWriter interface {
	WritePrimary(doc domain.Document) error
	WriteCategory(key string, doc domain.Document) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
