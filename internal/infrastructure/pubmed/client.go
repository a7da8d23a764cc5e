// Package pubmed talks to the NCBI E-utilities endpoints. Requests are
// sequential and batched, with a courtesy delay after every batch to
// stay inside the ~3 req/s policy for unkeyed clients.
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"oncodigest/internal/domain"
	"oncodigest/internal/ports"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	toolName       = "oncology-digest"

	// maxBatch respects the esummary/efetch identifier-count limit.
	maxBatch = 180

	// courtesyDelay is enforced after every batch request.
	courtesyDelay = 340 * time.Millisecond
)

// Client issues esummary and efetch batch requests.
type Client struct {
	baseURL string
	email   string
	client  *http.Client
	delay   time.Duration
	logger  *slog.Logger
}

var _ ports.SummaryService = (*Client)(nil)
var _ ports.AbstractService = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 45s timeout default.
func NewClient(client *http.Client, email string, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	return &Client{
		baseURL: defaultBaseURL,
		email:   email,
		client:  client,
		delay:   courtesyDelay,
		logger:  logger,
	}
}

// WithBaseURL points the client at a different endpoint root (tests).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// Summaries retrieves bibliographic summaries for the given PMIDs in
// batches. A transport or HTTP failure on any batch aborts the whole
// run: metadata is load-bearing for every downstream step.
func (c *Client) Summaries(ctx context.Context, pmids []string) (map[string]domain.Summary, error) {
	out := make(map[string]domain.Summary, len(pmids))

	for _, batch := range batches(pmids, maxBatch) {
		if err := c.summaryBatch(ctx, batch, out); err != nil {
			return nil, fmt.Errorf("esummary batch of %d: %w", len(batch), err)
		}
		c.sleep(ctx)
	}

	c.debug("summaries fetched", "requested", len(pmids), "returned", len(out))
	return out, nil
}

func (c *Client) summaryBatch(ctx context.Context, batch []string, out map[string]domain.Summary) error {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(batch, ","))
	params.Set("retmode", "json")
	params.Set("tool", toolName)
	params.Set("email", c.email)

	body, err := c.get(ctx, "/esummary.fcgi", params)
	if err != nil {
		return err
	}

	var resp esummaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode esummary: %w", err)
	}

	for _, uid := range resp.Result.UIDs {
		raw, ok := resp.Result.Records[uid]
		if !ok {
			continue
		}
		var rec esummaryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			continue
		}
		out[uid] = rec.toSummary(uid)
	}
	return nil
}

// Abstracts retrieves abstract text per PMID in batches. A batch whose
// response fails to parse is logged and skipped; abstracts are
// enrichment, not load-bearing data.
func (c *Client) Abstracts(ctx context.Context, pmids []string) (map[string]string, error) {
	out := make(map[string]string, len(pmids))

	for _, batch := range batches(pmids, maxBatch) {
		if err := c.abstractBatch(ctx, batch, out); err != nil {
			c.warn("efetch batch skipped", "size", len(batch), "error", err)
		}
		c.sleep(ctx)
	}

	return out, nil
}

func (c *Client) abstractBatch(ctx context.Context, batch []string, out map[string]string) error {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(batch, ","))
	params.Set("retmode", "xml")
	params.Set("tool", toolName)
	params.Set("email", c.email)

	body, err := c.get(ctx, "/efetch.fcgi", params)
	if err != nil {
		return err
	}

	var set efetchArticleSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return fmt.Errorf("decode efetch: %w", err)
	}

	for _, art := range set.Articles {
		if text := art.abstractText(); text != "" {
			out[art.PMID] = text
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/1.0 (%s)", toolName, c.email))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eutils returned %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// sleep enforces the courtesy delay without outliving the context.
func (c *Client) sleep(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	timer := time.NewTimer(c.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func batches(ids []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// ncbiDateLayouts covers the formats esummary emits for sortpubdate,
// epubdate and pubdate.
var ncbiDateLayouts = []string{
	"2006/01/02 15:04",
	"2006/01/02",
	"2006 Jan 2",
	"2006 Jan",
	"2006",
}

// NormalizeDate converts a raw NCBI date (e.g. "2024/06/05 00:00" or
// "2024 Jun 5") into an ISO-8601 UTC string. Unparseable input is
// returned unchanged: the raw string is retained rather than dropped.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range ncbiDateLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	}
	if parsed, err := dateparse.ParseIn(raw, time.UTC); err == nil {
		return parsed.UTC().Format(time.RFC3339)
	}
	return raw
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
