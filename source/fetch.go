package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/crisisatlas/fundgraph/errors"
)

// Client fetches raw tables from the upstream table API. Requests are
// paginated and rate limited; the upstream throttles aggressively, so
// the limiter is not optional.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// ClientOptions configures a fetch client.
type ClientOptions struct {
	Timeout           time.Duration // per-request timeout (default: 30s)
	RequestsPerSecond float64       // sustained request rate (default: 4)
	Logger            *zap.SugaredLogger
}

// NewClient creates a fetch client for the given API base URL and key.
func NewClient(baseURL, apiKey string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 4
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		logger:  opts.Logger,
	}
}

// page is one response page from the table API.
type page struct {
	Records []RawRecord `json:"records"`
	Offset  string      `json:"offset,omitempty"`
}

// FetchTable fetches every page of one table. Failures surface as
// ErrSourceUnavailable; a partially fetched table is never returned.
func (c *Client) FetchTable(ctx context.Context, table string) ([]RawRecord, error) {
	var records []RawRecord
	offset := ""

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "rate limiter interrupted")
		}

		p, err := c.fetchPage(ctx, table, offset)
		if err != nil {
			return nil, err
		}
		records = append(records, p.Records...)

		if c.logger != nil {
			c.logger.Debugw("Fetched table page",
				"table", table,
				"page_records", len(p.Records),
				"total", len(records),
			)
		}

		if p.Offset == "" {
			return records, nil
		}
		offset = p.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, table, offset string) (*page, error) {
	u, err := url.Parse(c.baseURL + "/" + url.PathEscape(table))
	if err != nil {
		return nil, errors.Wrap(err, "build table URL")
	}
	if offset != "" {
		q := u.Query()
		q.Set("offset", offset)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapSourceUnavailable(err, "fetch table "+table)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapSourceUnavailable(err, "read response for table "+table)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable,
			"table %s: upstream returned %d", table, resp.StatusCode)
	}

	var p page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, errors.WrapSourceUnavailable(err, "parse response for table "+table)
	}
	return &p, nil
}
