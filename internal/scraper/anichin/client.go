// Package anichin exposes the public scrape operations of the anichin.cafe site.
// Every operation fetches one page, extracts it with the selector table and
// returns the result in a response envelope.
package anichin

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zhadevv/anichin/internal/config"
	"github.com/zhadevv/anichin/internal/logger"
	"github.com/zhadevv/anichin/internal/scraper"
	"github.com/zhadevv/anichin/internal/scraper/envelope"
	"github.com/zhadevv/anichin/internal/scraper/extract"
	"github.com/zhadevv/anichin/internal/scraper/fetch"
	"github.com/zhadevv/anichin/internal/scraper/ratelimit"
	"github.com/zhadevv/anichin/internal/scraper/selector"
)

// EventScrapeCompleted is broadcast after every operation.
const EventScrapeCompleted = "scrape:completed"

// Fetcher retrieves upstream pages.
type Fetcher interface {
	Get(ctx context.Context, path string, query url.Values) (*fetch.Page, error)
	BaseURL() string
}

// ScrapeEvent is the payload of EventScrapeCompleted.
type ScrapeEvent struct {
	RequestID string `json:"request_id"`
	Operation string `json:"operation"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// HealthReporter records the outcome of each operation.
type HealthReporter interface {
	RegisterItemStr(category, id, name string)
	SetWarningStr(category, id, message string)
	ClearStatusStr(category, id string)
}

// healthCategory is the health category operations are reported under.
const healthCategory = "operations"

// Client runs scrape operations against one site.
type Client struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	logger    zerolog.Logger

	mu          sync.RWMutex
	broadcaster logger.Broadcaster
	health      HealthReporter
}

// New creates a Client from scraper configuration. Zero retries or request
// delay in cfg mean "disabled".
func New(cfg config.ScraperConfig, log zerolog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, scraper.NewConfigError(err.Error(), err)
	}

	def, err := extract.LoadDefinition(cfg.SelectorsPath)
	if err != nil {
		return nil, scraper.NewConfigError("load selector definition", err)
	}

	opts := fetch.Options{
		BaseURL:          cfg.BaseURL,
		UserAgent:        cfg.UserAgent,
		UserAgents:       cfg.UserAgents,
		Headers:          cfg.Headers,
		Timeout:          cfg.Timeout,
		MaxRetries:       disabledIfZero(cfg.MaxRetries),
		RetryDelay:       cfg.RetryDelay,
		RequestDelay:     disabledIfZero(cfg.RequestDelay),
		CloudflareBypass: cfg.CloudflareBypass,
	}
	if cfg.Proxy.Enabled() {
		opts.ProxyURL = cfg.Proxy.URL()
	}

	fetcher, err := fetch.NewClient(opts, log)
	if err != nil {
		return nil, err
	}
	return NewWithFetcher(fetcher, def, log)
}

// NewWithFetcher creates a Client over an existing fetcher. A nil def uses the
// embedded selector table.
func NewWithFetcher(f Fetcher, def *extract.Definition, log zerolog.Logger) (*Client, error) {
	if def == nil {
		var err error
		if def, err = extract.DefaultDefinition(); err != nil {
			return nil, scraper.NewConfigError("load selector definition", err)
		}
	}
	site, err := extract.NewSite(f.BaseURL())
	if err != nil {
		return nil, scraper.NewConfigError("invalid base url", err)
	}
	return &Client{
		fetcher:   f,
		extractor: extract.New(def, site),
		logger:    log.With().Str("component", "anichin").Logger(),
	}, nil
}

// SetBroadcaster sets the hub that receives EventScrapeCompleted.
func (c *Client) SetBroadcaster(b logger.Broadcaster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broadcaster = b
}

// SetHealth sets the reporter that tracks operation failures. Rejected input
// is not a health issue and is not reported.
func (c *Client) SetHealth(h HealthReporter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = h
}

// BaseURL returns the scraped site.
func (c *Client) BaseURL() string {
	return c.fetcher.BaseURL()
}

// LimiterStatus exposes the fetch limiter when the fetcher has one.
func (c *Client) LimiterStatus() (ratelimit.LimitStatus, bool) {
	if f, ok := c.fetcher.(interface{ LimiterStatus() ratelimit.LimitStatus }); ok {
		return f.LimiterStatus(), true
	}
	return ratelimit.LimitStatus{}, false
}

// Ping fetches the landing page and reports whether the site answered.
func (c *Client) Ping(ctx context.Context) (*fetch.Page, error) {
	path, query, err := c.extractor.Definition().Resolve(extract.PageHome, extract.PathArgs{})
	if err != nil {
		return nil, err
	}
	return c.fetcher.Get(ctx, path, query)
}

// request describes one page fetch.
type request struct {
	operation string
	page      string
	args      extract.PathArgs
	// query overrides the page's query templates when set.
	query url.Values
}

// scrape fetches and extracts one page. read may return an INVALID_INPUT error
// for conditions only visible in the markup.
func scrape[T any](ctx context.Context, c *Client, req request, read func(doc selector.NodeSet) (T, error)) *envelope.Response[T] {
	meta := envelope.NewMetadata(req.operation)
	action := c.extractor.Definition().Page(req.page).Context

	data, err := fetchAndRead(ctx, c, req, &meta, read)
	meta.Finish()

	var resp *envelope.Response[T]
	if err != nil {
		resp = envelope.Fail[T](action, err, meta)
	} else {
		resp = envelope.OK(data, meta)
	}
	c.complete(resp)
	return resp
}

func fetchAndRead[T any](ctx context.Context, c *Client, req request, meta *envelope.Metadata, read func(selector.NodeSet) (T, error)) (T, error) {
	var zero T

	path, query, err := c.extractor.Definition().Resolve(req.page, req.args)
	if err != nil {
		return zero, scraper.NewConfigError("resolve page path", err)
	}
	if req.query != nil {
		query = req.query
	}
	meta.SourceURL = c.sourceURL(path, query)

	page, err := c.fetcher.Get(ctx, path, query)
	if page != nil && page.URL != "" {
		meta.SourceURL = page.URL
	}
	if err != nil {
		return zero, err
	}

	doc, err := selector.Parse(page.Body)
	if err != nil {
		return zero, scraper.NewParseError(meta.SourceURL, err)
	}
	return read(doc)
}

func (c *Client) sourceURL(path string, query url.Values) string {
	u := strings.TrimRight(c.fetcher.BaseURL(), "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// invalid returns a rejected request without touching the network.
func invalid[T any](c *Client, operation, message string) *envelope.Response[T] {
	meta := envelope.NewMetadata(operation)
	meta.Finish()
	resp := envelope.Invalid[T](message, meta)
	c.complete(resp)
	return resp
}

func (c *Client) complete(resp envelope.Envelope) {
	meta := resp.Meta()
	ev := c.logger.Debug()
	if !resp.Succeeded() {
		ev = c.logger.Warn().Err(resp.Err())
	}
	ev.Str("operation", meta.Operation).
		Str("request_id", meta.RequestID).
		Str("url", meta.SourceURL).
		Int64("elapsed_ms", meta.ElapsedMS).
		Bool("success", resp.Succeeded()).
		Msg("Scrape completed")

	c.mu.RLock()
	b, h := c.broadcaster, c.health
	c.mu.RUnlock()

	if h != nil && !errors.Is(resp.Err(), scraper.ErrInvalidInput) {
		h.RegisterItemStr(healthCategory, meta.Operation, meta.Operation)
		if resp.Succeeded() {
			h.ClearStatusStr(healthCategory, meta.Operation)
		} else {
			h.SetWarningStr(healthCategory, meta.Operation, scraper.Describe(resp.Err()))
		}
	}
	if b == nil {
		return
	}

	event := ScrapeEvent{
		RequestID: meta.RequestID,
		Operation: meta.Operation,
		Success:   resp.Succeeded(),
		SourceURL: meta.SourceURL,
		ElapsedMS: meta.ElapsedMS,
	}
	if err := resp.Err(); err != nil {
		event.Message = scraper.Describe(err)
	}
	b.Broadcast(EventScrapeCompleted, event)
}

// normalizeSlug accepts a bare slug or a site URL.
func (c *Client) normalizeSlug(slug string) string {
	return c.extractor.Site().Slug(strings.TrimSpace(slug))
}

func disabledIfZero[N ~int | ~int64](n N) N {
	if n == 0 {
		return -1
	}
	return n
}
