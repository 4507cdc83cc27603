// Package fetch performs rate-limited, retrying GET requests against the upstream site.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"time"

	"dario.cat/mergo"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/zhadevv/anichin/internal/scraper"
	"github.com/zhadevv/anichin/internal/scraper/ratelimit"
)

// Options configures a Client. Zero values are filled from DefaultOptions.
type Options struct {
	BaseURL string
	// UserAgent pins the User-Agent header and disables rotation.
	UserAgent  string
	UserAgents []string
	Headers    map[string]string
	Timeout    time.Duration
	// MaxRetries of zero uses the default; a negative value disables retries.
	MaxRetries int
	RetryDelay time.Duration
	// RequestDelay of zero uses the default; a negative value disables limiting.
	RequestDelay     time.Duration
	ProxyURL         string
	CloudflareBypass bool
}

// DefaultOptions returns the client defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:      "https://anichin.cafe",
		UserAgents:   []string{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"},
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryDelay:   time.Second,
		RequestDelay: time.Second,
		Headers: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language":           "en-US,en;q=0.5",
			"Connection":                "keep-alive",
			"Upgrade-Insecure-Requests": "1",
			"Cache-Control":             "max-age=0",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "same-origin",
		},
	}
}

// Page is a fetched upstream document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Attempts   int
	Elapsed    time.Duration
}

// Client wraps resty with rate limiting and User-Agent rotation.
type Client struct {
	http    *resty.Client
	limiter *ratelimit.Limiter
	opts    Options
	logger  zerolog.Logger
}

// NewClient creates a fetch client.
func NewClient(opts Options, logger zerolog.Logger) (*Client, error) {
	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}
	opts.Headers = headers

	if err := mergo.Merge(&opts, DefaultOptions()); err != nil {
		return nil, scraper.NewConfigError("merge fetch defaults", err)
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if _, err := url.ParseRequestURI(opts.BaseURL); err != nil {
		return nil, scraper.NewConfigError(fmt.Sprintf("invalid base url %q", opts.BaseURL), err)
	}

	log := logger.With().Str("component", "fetch").Logger()

	delay := opts.RequestDelay
	if delay < 0 {
		delay = 0
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		limiter: ratelimit.NewLimiter(ratelimit.Config{MinDelay: delay}, logger),
		opts:    opts,
		logger:  log,
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetLogger(restyLogger{log}).
		SetHeaders(opts.Headers).
		SetHeader("Referer", opts.BaseURL).
		SetHeader("Origin", opts.BaseURL)

	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	// SetProxy requires the stock *http.Transport, so it runs before any wrapping.
	if opts.ProxyURL != "" {
		if _, err := url.Parse(opts.ProxyURL); err != nil {
			return nil, scraper.NewConfigError(fmt.Sprintf("invalid proxy url %q", opts.ProxyURL), err)
		}
		client.SetProxy(opts.ProxyURL)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}

	if retries > 0 {
		client.
			SetRetryCount(retries).
			SetRetryWaitTime(opts.RetryDelay).
			SetRetryMaxWaitTime(opts.RetryDelay * time.Duration(retries+1)).
			SetRetryAfter(c.linearBackoff).
			AddRetryCondition(shouldRetry).
			AddRetryHook(c.onRetry)
	}

	client.OnBeforeRequest(c.beforeRequest)
	client.OnAfterResponse(c.afterResponse)
	client.OnError(c.onError)

	c.http = client
	return c, nil
}

// Get fetches path (relative to the base URL) with optional query parameters.
// A 4xx response, or a 5xx that survives every retry, returns an HTTP status error.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Page, error) {
	start := time.Now()

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	target := c.opts.BaseURL + path
	if resp != nil && resp.Request != nil && resp.Request.URL != "" {
		target = resp.Request.URL
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %w", ctxErr, err)
		}
		c.logger.Error().Err(err).Str("url", target).Msg("Request failed")
		return nil, scraper.NewNetworkError(target, err)
	}

	page := &Page{
		URL:        target,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Attempts:   resp.Request.Attempt,
		Elapsed:    time.Since(start),
	}

	if resp.IsError() {
		c.logger.Warn().
			Str("url", target).
			Int("status", page.StatusCode).
			Int("attempts", page.Attempts).
			Msg("Upstream returned error status")
		return page, scraper.NewStatusError(target, page.StatusCode)
	}

	c.logger.Debug().
		Str("url", target).
		Int("status", page.StatusCode).
		Int("attempts", page.Attempts).
		Dur("elapsed", page.Elapsed).
		Msg("Request complete")

	return page, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.opts.BaseURL
}

// LimiterStatus exposes the rate limiter state.
func (c *Client) LimiterStatus() ratelimit.LimitStatus {
	return c.limiter.Status()
}

func (c *Client) beforeRequest(_ *resty.Client, req *resty.Request) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}
	if c.opts.UserAgent == "" {
		req.Header.Set("User-Agent", c.pickUserAgent())
	}
	return nil
}

func (c *Client) afterResponse(_ *resty.Client, resp *resty.Response) error {
	c.limiter.Done()
	return nil
}

func (c *Client) onRetry(resp *resty.Response, err error) {
	c.limiter.Done()

	ev := c.logger.Warn()
	if resp != nil {
		ev = ev.Int("status", resp.StatusCode()).Int("attempt", resp.Request.Attempt)
	}
	ev.Err(err).Msg("Retrying request")
}

func (c *Client) onError(_ *resty.Request, _ error) {
	c.limiter.Done()
}

// linearBackoff waits RetryDelay times the attempt number.
func (c *Client) linearBackoff(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
	attempt := 1
	if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
		attempt = resp.Request.Attempt
	}
	return c.opts.RetryDelay * time.Duration(attempt), nil
}

func (c *Client) pickUserAgent() string {
	pool := c.opts.UserAgents
	return pool[rand.IntN(len(pool))]
}

func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= 500
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct {
	zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.Logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.Logger.Debug().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.Logger.Debug().Msgf(format, v...)
}
