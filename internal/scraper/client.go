package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/gsack/internal/logger"
)

const (
	UserAgent = "gsack/1.0 (github.com/pfrederiksen/gsack)"
	Timeout   = 30 * time.Second
)

// Response is the part of an HTTP response the sources look at.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

// Client is the HTTP transport used by every source.
type Client interface {
	Get(ctx context.Context, url string) (*Response, error)
	PostForm(ctx context.Context, url string, form map[string]string) (*Response, error)
}

// HTTPClient is a rate-limited Client. Every request, the very first one included,
// waits for the full delay measured from the end of the previous response.
type HTTPClient struct {
	http  *resty.Client
	delay time.Duration

	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewHTTPClient creates a client that waits delay before each request.
func NewHTTPClient(delay time.Duration) (*HTTPClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := resty.New()
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", UserAgent)
	client.SetTimeout(Timeout)

	return &HTTPClient{
		http:    client,
		delay:   delay,
		limiter: newDelayLimiter(delay),
	}, nil
}

func newDelayLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	limiter := rate.NewLimiter(rate.Every(delay), 1)
	// Spend the initial token so the first request is delayed like all the others.
	limiter.Allow()
	return limiter
}

// Get fetches url.
func (c *HTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// PostForm posts form as application/x-www-form-urlencoded to url.
func (c *HTTPClient) PostForm(ctx context.Context, url string, form map[string]string) (*Response, error) {
	return c.do(ctx, http.MethodPost, url, form)
}

// restartDelay starts a new delay interval once a response has completed.
func (c *HTTPClient) restartDelay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = newDelayLimiter(c.delay)
}

func (c *HTTPClient) currentLimiter() *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limiter
}

func (c *HTTPClient) do(ctx context.Context, method, url string, form map[string]string) (*Response, error) {
	if err := c.currentLimiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}
	defer c.restartDelay()

	start := time.Now()
	req := c.http.R().SetContext(ctx)
	if form != nil {
		req.SetFormData(form)
	}

	resp, err := req.Execute(method, url)
	logger.RecordTiming("fetch", time.Since(start))
	if err != nil {
		// Connection refused, DNS and TLS failures all end up here.
		return nil, transientError(method, url, err)
	}

	logger.Debug("fetched", logger.Fields{
		"method": method,
		"url":    url,
		"status": resp.StatusCode(),
		"bytes":  len(resp.Body()),
	})

	return &Response{
		Method:     method,
		URL:        url,
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}, nil
}

// fetchOK unwraps the result of a Client call, treating non-200 responses as transient
// failures.
func fetchOK(resp *Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, transientError(resp.Method, resp.URL, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}
	return resp.Body, nil
}
