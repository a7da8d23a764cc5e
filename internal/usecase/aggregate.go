package usecase

import (
	"sort"
	"time"

	"oncodigest/internal/domain"
)

// Aggregate applies the final pipeline stages in their fixed order:
// rank sort, dedup, recency filter, category partition. Sorting happens
// before dedup so that, among duplicates, the highest-ranked instance
// survives.
func Aggregate(articles []domain.Article, now time.Time, daysBack int) map[string][]domain.Article {
	ranked := Rank(articles)
	deduped := Dedup(ranked)
	recent := FilterRecent(deduped, now, daysBack)
	return PartitionByCategory(recent)
}

// Rank sorts descending by (metric, publication date). The metric is
// primary with -1 standing in for absent values; the ISO date string
// compares lexicographically as the recency tiebreak. The sort is
// stable: equal pairs keep their insertion order.
func Rank(articles []domain.Article) []domain.Article {
	out := append([]domain.Article(nil), articles...)
	sort.SliceStable(out, func(i, j int) bool {
		mi, mj := out[i].RankMetric(), out[j].RankMetric()
		if mi != mj {
			return mi > mj
		}
		return out[i].PubDate > out[j].PubDate
	})
	return out
}

// Dedup keeps the first occurrence per dedup key. Input must already be
// rank-sorted: first-seen-after-sort wins.
func Dedup(sorted []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(sorted))
	out := make([]domain.Article, 0, len(sorted))
	for _, art := range sorted {
		key := art.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, art)
	}
	return out
}

// FilterRecent drops articles whose publication date parses and falls
// before now-daysBack. Unparseable dates fail open: the article is kept.
func FilterRecent(articles []domain.Article, now time.Time, daysBack int) []domain.Article {
	cutoff := now.UTC().AddDate(0, 0, -daysBack)

	out := make([]domain.Article, 0, len(articles))
	for _, art := range articles {
		parsed, err := time.Parse(time.RFC3339, art.PubDate)
		if err == nil && parsed.Before(cutoff) {
			continue
		}
		out = append(out, art)
	}
	return out
}

// PartitionByCategory groups articles by the category that owns them,
// preserving the ranked order inside each partition.
func PartitionByCategory(articles []domain.Article) map[string][]domain.Article {
	out := make(map[string][]domain.Article)
	for _, art := range articles {
		out[art.CategoryKey] = append(out[art.CategoryKey], art)
	}
	return out
}
