package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"oncodigest/internal/pmid"
	"oncodigest/internal/ports"
)

// Reader collects PubMed identifiers from one RSS/Atom feed. In
// permissive mode it also mines title, summary text and any link found
// inside HTML entry bodies, which recovers identifiers from feeds that
// put the record URL only into the description markup.
type Reader struct {
	client     *http.Client
	userAgent  string
	permissive bool
	logger     *slog.Logger
}

var _ ports.PMIDSource = (*Reader)(nil)

// NewReader wires an HTTP client; a nil client gets a 30s timeout default.
func NewReader(client *http.Client, userAgent string, permissive bool, logger *slog.Logger) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Reader{client: client, userAgent: userAgent, permissive: permissive, logger: logger}
}

// CollectPMIDs fetches the feed and returns identifiers in first-seen
// order, deduplicated within the feed. Entries without an extractable
// identifier are dropped silently: feed noise is expected.
func (r *Reader) CollectPMIDs(ctx context.Context, feedURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	ids := make([]string, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		id, ok := pmid.FromCandidates(r.candidates(item)...)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}

	unique := pmid.Dedupe(ids)
	r.debug("feed collected", "url", feedURL, "entries", len(parsed.Items), "pmids", len(unique))
	return unique, nil
}

// candidates orders the entry fields tried for extraction: explicit id,
// canonical link, then the permissive extras.
func (r *Reader) candidates(item *gofeed.Item) []string {
	cands := []string{item.GUID, item.Link}
	if !r.permissive {
		return cands
	}

	for _, link := range item.Links {
		if link != item.Link {
			cands = append(cands, link)
		}
	}
	cands = append(cands, htmlLinks(item.Content)...)
	cands = append(cands, htmlLinks(item.Description)...)
	cands = append(cands, item.Title, item.Description)
	return cands
}

// htmlLinks pulls anchor targets out of an HTML fragment. A fragment
// that fails to parse contributes no candidates.
func htmlLinks(fragment string) []string {
	if fragment == "" || !strings.Contains(fragment, "<") {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil
	}

	var hrefs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
