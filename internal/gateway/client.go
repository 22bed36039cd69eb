package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client wraps calls to the organization's REST backend. Every request
// carries the session's opaque token as a bearer credential; the backend is
// the authority on whether the call is actually allowed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	newBackOff func() backoff.BackOff
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

// Do forwards a request to the upstream API. Requests without a body are
// retried on transient failures with exponential backoff; anything carrying
// a body is sent exactly once.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType, token string) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if body == nil {
		return c.doWithRetry(ctx, method, target, contentType, token)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, contentType, token)
	return c.httpClient.Do(req)
}

func (c *Client) doWithRetry(ctx context.Context, method, target, contentType, token string) (*http.Response, error) {
	var resp *http.Response
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, method, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setHeaders(req, contentType, token)
		res, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		if res.StatusCode >= http.StatusInternalServerError {
			_ = res.Body.Close()
			return errUpstreamUnavailable
		}
		resp = res
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), 3), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, contentType, token string) {
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
