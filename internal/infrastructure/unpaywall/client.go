// Package unpaywall resolves open-access status per DOI. Lookups are
// enrichment, not load-bearing data: any failure degrades and must
// never abort the pipeline.
package unpaywall

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"oncodigest/internal/domain"
	"oncodigest/internal/ports"
)

const defaultBaseURL = "https://api.unpaywall.org/v2"

// Client queries the Unpaywall v2 API.
type Client struct {
	baseURL string
	email   string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.OpenAccessResolver = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a 30s timeout default.
func NewClient(client *http.Client, email string, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: defaultBaseURL, email: email, client: client, logger: logger}
}

// WithBaseURL points the client at a different endpoint root (tests).
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

type oaResponse struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URL string `json:"url"`
	} `json:"best_oa_location"`
}

// Resolve returns the tri-state open-access status for one DOI. A
// missing DOI skips the network call entirely (unknown); a 404 is a
// confident negative (the service knows the record is closed);
// everything else degrades.
func (c *Client) Resolve(ctx context.Context, doi string) domain.OAResult {
	if doi == "" {
		return domain.OAUnknown("no doi")
	}

	endpoint := fmt.Sprintf("%s/%s?email=%s", c.baseURL, url.PathEscape(doi), url.QueryEscape(c.email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return c.degrade(doi, fmt.Sprintf("build request: %v", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return c.degrade(doi, fmt.Sprintf("do request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.OAClosed()
	}
	if resp.StatusCode != http.StatusOK {
		return c.degrade(doi, "unpaywall returned "+resp.Status)
	}

	var body oaResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return c.degrade(doi, fmt.Sprintf("decode response: %v", err))
	}

	if !body.IsOA {
		return domain.OAClosed()
	}

	var oaURL string
	if body.BestOALocation != nil {
		oaURL = body.BestOALocation.URL
	}
	return domain.OAOpen(oaURL)
}

func (c *Client) degrade(doi, reason string) domain.OAResult {
	if c.logger != nil {
		c.logger.Warn("open-access lookup degraded", "doi", doi, "reason", reason)
	}
	return domain.OADegraded(reason)
}
