package pinterest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "boardharvest/pkg/errors"
	"boardharvest/pkg/logger"
	"boardharvest/pkg/ratelimit"
	"boardharvest/pkg/retry"
)

// SessionCookieName is the cookie carrying a logged-in session
const SessionCookieName = "_pinterest_sess"

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client fetches pages and image payloads the way the site's own pages do
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	session    string
	limiter    ratelimit.Limiter
	pageRetry  retry.Policy
	logger     logger.Logger
}

// NewClient creates a client. A zero timeout means requests never time out.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept-Language": "en-US,en;q=0.9",
			"Cache-Control":   "no-cache",
		},
		baseURL:   BaseURL,
		pageRetry: retry.DefaultPolicy(log),
		logger:    log.WithField("component", "pinterest_client"),
	}
}

// SetHeader sets a custom header for every request
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetUserAgent overrides the user agent
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.headers["User-Agent"] = ua
	}
}

// SetBaseURL changes the site root used as referer
func (c *Client) SetBaseURL(u string) {
	if u != "" {
		c.baseURL = u
	}
}

// SetSession attaches a session cookie to every request
func (c *Client) SetSession(value string) {
	c.session = value
}

// SetLimiter paces requests. nil disables pacing.
func (c *Client) SetLimiter(l ratelimit.Limiter) {
	c.limiter = l
}

// SetPageRetry replaces the retry policy for page documents
func (c *Client) SetPageRetry(p retry.Policy) {
	c.pageRetry = p
}

// Fetch downloads the raw bytes of an image
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url, map[string]string{
		"Accept":         "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
		"Sec-Fetch-Dest": "image",
	})
}

// FetchPage downloads an HTML document. Unlike image fetches, transient
// failures are retried under the page retry policy.
func (c *Client) FetchPage(ctx context.Context, url string) ([]byte, error) {
	return retry.DoWithResult(ctx, c.pageRetry, func() ([]byte, error) {
		return c.get(ctx, url, map[string]string{
			"Accept":         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Sec-Fetch-Dest": "document",
		})
	})
}

func (c *Client) get(ctx context.Context, url string, extra map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}
	req.Header.Set("Referer", c.baseURL+"/")
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.session})
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, apperrors.New(apperrors.ErrorTypeNetwork, fmt.Sprintf("network error: %v", err))
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, apperrors.FromStatusCode(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrorTypeNetwork, fmt.Sprintf("failed to read response body: %v", err))
	}
	return data, nil
}
