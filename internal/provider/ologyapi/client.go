// Package ologyapi talks to the remote citation analytics API.
package ologyapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"ology/internal/model"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	historyPath    = "/history"
	topDomainsPath = "/top-domains"

	// DefaultRequestsPerSecond paces each token when no rate is configured.
	DefaultRequestsPerSecond = 5
)

// Rollup values accepted by the API for subdomain aggregation.
const (
	RollupNone = "none"
)

// LogFunc emits a log line. When set, used instead of slog.Info (fan-in logger).
type LogFunc func(msg string)

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API %s status %d: %s", e.Path, e.Status, e.Body)
}

// HistoryQuery selects the day buckets of one domain.
type HistoryQuery struct {
	Domain          string
	From            time.Time
	To              time.Time
	SubdomainRollup string
}

func (q HistoryQuery) params() map[string]string {
	p := map[string]string{
		"domain":     q.Domain,
		"start-date": q.From.UTC().Format(dateLayout),
		"end-date":   q.To.UTC().Format(dateLayout),
	}
	if q.SubdomainRollup != "" {
		p["subdomain-rollup"] = q.SubdomainRollup
	}
	return p
}

// TopDomainsQuery selects one page of the top-domains listing.
type TopDomainsQuery struct {
	From            time.Time
	To              time.Time
	Page            int
	SubdomainRollup string
}

func (q TopDomainsQuery) params() map[string]string {
	page := q.Page
	if page < 1 {
		page = 1
	}
	rollup := q.SubdomainRollup
	if rollup == "" {
		rollup = RollupNone
	}
	return map[string]string{
		"start-date":       q.From.UTC().Format(dateLayout),
		"end-date":         q.To.UTC().Format(dateLayout),
		"page":             strconv.Itoa(page),
		"subdomain-rollup": rollup,
	}
}

// Client fetches day-bucketed history and top-domain listings from the analytics API.
// Each token is paced by its own limiter; callers pick the token.
type Client struct {
	http    *resty.Client
	rps     float64
	mu      sync.Mutex
	pacers  map[string]*rate.Limiter
	LogFunc LogFunc // Optional fan-in logger for request diagnostics.

	// OnResponse, when set, observes every finished request (metrics hook).
	OnResponse func(path string, status int, elapsed time.Duration)
}

// NewClient constructs a Client for baseURL with per-token pacing of rps requests per second.
func NewClient(baseURL string, rps float64) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("analytics API base URL is empty")
	}
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &Client{
		http:   newRestyClient(baseURL),
		rps:    rps,
		pacers: make(map[string]*rate.Limiter),
	}, nil
}

func (c *Client) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.LogFunc != nil {
		c.LogFunc(msg)
	} else {
		slog.Debug(msg)
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}

func (c *Client) pacer(token string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.pacers[token]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.rps), 1)
		c.pacers[token] = l
	}
	return l
}

// get runs one paced GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path, token string, params map[string]string, out any) error {
	if err := c.pacer(token).Wait(ctx); err != nil {
		return fmt.Errorf("wait for token: %w", err)
	}
	req := c.http.R().SetContext(ctx).SetQueryParams(params)
	if token != "" {
		req.SetAuthToken(token)
	}

	start := time.Now()
	resp, err := req.Get(path)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(path, 0, elapsed)
		return fmt.Errorf("API call %s failed after %d attempts: %w", path, maxRetries, err)
	}
	c.observe(path, resp.StatusCode(), elapsed)
	if resp.IsError() {
		return &StatusError{Path: path, Status: resp.StatusCode(), Body: resp.String()}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("parse JSON from %s: %w", path, err)
	}
	return nil
}

func (c *Client) observe(path string, status int, elapsed time.Duration) {
	if c.OnResponse != nil {
		c.OnResponse(path, status, elapsed)
	}
}

// FetchHistoryWithToken fetches the day buckets of q.Domain using the provided token.
// The series is sorted by day and has one point per bucket returned.
func (c *Client) FetchHistoryWithToken(ctx context.Context, q HistoryQuery, token string) (model.Series, error) {
	if q.Domain == "" {
		return nil, fmt.Errorf("history query without domain")
	}
	if q.To.Before(q.From) {
		return nil, fmt.Errorf("history %s: end %s before start %s", q.Domain, q.To.Format(dateLayout), q.From.Format(dateLayout))
	}
	var raw HistoryResponse
	if err := c.get(ctx, historyPath, token, q.params(), &raw); err != nil {
		return nil, fmt.Errorf("history %s: %w", q.Domain, err)
	}
	s, err := raw.ToSeries()
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", q.Domain, err)
	}
	c.logf("[%s] history %s..%s: %d days, total %g", q.Domain, q.From.Format(dateLayout), q.To.Format(dateLayout), len(s), raw.Result.Count.Float64())
	return s, nil
}

// FetchTopDomainsWithToken fetches one page of the top-domains listing.
func (c *Client) FetchTopDomainsWithToken(ctx context.Context, q TopDomainsQuery, token string) ([]model.TopDomain, error) {
	var raw []TopDomainRaw
	if err := c.get(ctx, topDomainsPath, token, q.params(), &raw); err != nil {
		return nil, fmt.Errorf("top domains page %d: %w", q.Page, err)
	}
	out := make([]model.TopDomain, len(raw))
	for i, r := range raw {
		out[i] = r.ToTopDomain()
	}
	c.logf("top domains page %d: %d entries", q.Page, len(out))
	return out, nil
}
