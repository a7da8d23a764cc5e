package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"oncodigest/internal/classify"
	"oncodigest/internal/config"
	"oncodigest/internal/domain"
	"oncodigest/internal/ports"
)

// PipelineDeps wires all driven adapters into the digest pipeline.
type PipelineDeps struct {
	Groups           []config.FeedGroup
	DaysBack         int
	IncludeAbstracts bool
	MetricName       string

	Source     ports.PMIDSource
	Summaries  ports.SummaryService
	Abstracts  ports.AbstractService
	OpenAccess ports.OpenAccessResolver
	Metrics    ports.MetricLoader
	Writer     ports.DocumentWriter
	Logger     *slog.Logger
}

// Pipeline implements one full digest build: collect identifiers,
// fetch metadata, enrich, classify, aggregate, emit.
type Pipeline struct {
	groups           []config.FeedGroup
	daysBack         int
	includeAbstracts bool
	metricName       string

	source     ports.PMIDSource
	summaries  ports.SummaryService
	abstracts  ports.AbstractService
	openAccess ports.OpenAccessResolver
	metrics    ports.MetricLoader
	writer     ports.DocumentWriter
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		groups:           deps.Groups,
		daysBack:         deps.DaysBack,
		includeAbstracts: deps.IncludeAbstracts,
		metricName:       deps.MetricName,
		source:           deps.Source,
		summaries:        deps.Summaries,
		abstracts:        deps.Abstracts,
		openAccess:       deps.OpenAccess,
		metrics:          deps.Metrics,
		writer:           deps.Writer,
		logger:           deps.Logger,
	}
}

// Run executes a single synchronous digest build anchored at now. Only
// a metadata batch failure aborts the run; every enrichment failure
// degrades and the build continues.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	generated := now.UTC().Format(time.RFC3339)

	if len(p.groups) == 0 {
		p.info("no feed sources configured, writing empty document")
		return p.writer.WritePrimary(domain.Document{Generated: generated})
	}

	ids, owner := p.collect(ctx)
	p.info("identifiers collected", "count", len(ids))

	summaries, err := p.summaries.Summaries(ctx, ids)
	if err != nil {
		return fmt.Errorf("fetch summaries: %w", err)
	}

	articles := p.build(ctx, ids, owner, summaries)

	if p.includeAbstracts && len(articles) > 0 {
		p.attachAbstracts(ctx, articles)
	}

	partition := Aggregate(articles, now, p.daysBack)
	return p.write(partition, generated)
}

// collect walks feed groups in configured order and assigns each PMID
// to the first category that surfaces it. Ownership is fixed here,
// before any enrichment begins, and never reassigned later.
func (p *Pipeline) collect(ctx context.Context) ([]string, map[string]string) {
	var ordered []string
	owner := make(map[string]string)

	for _, group := range p.groups {
		for _, feedURL := range group.Feeds {
			ids, err := p.source.CollectPMIDs(ctx, feedURL)
			if err != nil {
				p.warn("feed skipped", "url", feedURL, "error", err)
				continue
			}
			for _, id := range ids {
				if _, taken := owner[id]; taken {
					continue
				}
				owner[id] = group.Key
				ordered = append(ordered, id)
			}
		}
	}

	return ordered, owner
}

// build assembles one Article per summarized PMID, preserving the
// collection order. Identifiers the summary service did not return are
// dropped: there is nothing downstream could do with them.
func (p *Pipeline) build(ctx context.Context, ids []string, owner map[string]string, summaries map[string]domain.Summary) []domain.Article {
	table := p.metrics.Load()

	articles := make([]domain.Article, 0, len(ids))
	for _, id := range ids {
		sum, ok := summaries[id]
		if !ok {
			p.debug("no summary record", "pmid", id)
			continue
		}

		labels := classify.Classify(sum.Title, sum.PubTypes)

		pubTypes := sum.PubTypes
		if pubTypes == nil {
			pubTypes = []string{}
		}

		art := domain.Article{
			PMID:        id,
			DOI:         sum.DOI,
			Title:       sum.Title,
			Journal:     sum.Journal,
			PubDate:     sum.PubDate,
			PubTypes:    pubTypes,
			Entity:      labels.Entity,
			TrialType:   labels.TrialType,
			StudyClass:  labels.StudyClass,
			URLPubMed:   domain.PubMedLinkBase + id + "/",
			CategoryKey: owner[id],
		}
		if sum.DOI != "" {
			art.URLDOI = domain.DOILinkBase + sum.DOI
		}

		if value, found := table.Lookup(sum.Journal); found {
			v := value
			art.MetricName = p.metricName
			art.MetricValue = &v
		}

		oa := p.openAccess.Resolve(ctx, sum.DOI)
		art.IsOA = oa.IsOA
		art.OAURL = oa.URL

		articles = append(articles, art)
	}

	return articles
}

// attachAbstracts decorates articles in place. Failed batches leave the
// affected articles without abstracts; the run proceeds regardless.
func (p *Pipeline) attachAbstracts(ctx context.Context, articles []domain.Article) {
	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.PMID
	}

	texts, err := p.abstracts.Abstracts(ctx, ids)
	if err != nil {
		p.warn("abstract fetch degraded", "error", err)
		return
	}

	for i := range articles {
		articles[i].Abstract = texts[articles[i].PMID]
	}
}

// write emits one document per category; the first group doubles as the
// primary artifact and carries the category list for the front end.
func (p *Pipeline) write(partition map[string][]domain.Article, generated string) error {
	categories := make([]domain.Category, 0, len(p.groups))
	for _, group := range p.groups {
		categories = append(categories, domain.Category{Key: group.Key, Label: group.Label})
	}

	primary := domain.Document{
		Generated: generated,
		Items:     partition[p.groups[0].Key],
	}
	if len(categories) > 1 {
		primary.Categories = categories
	}
	if err := p.writer.WritePrimary(primary); err != nil {
		return fmt.Errorf("write primary document: %w", err)
	}
	p.info("primary document written", "items", len(primary.Items))

	for _, group := range p.groups[1:] {
		doc := domain.Document{Generated: generated, Items: partition[group.Key]}
		if err := p.writer.WriteCategory(group.Key, doc); err != nil {
			return fmt.Errorf("write category %s: %w", group.Key, err)
		}
		p.info("category document written", "category", group.Key, "items", len(doc.Items))
	}

	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
