package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jimmc414/onefilellm/internal/extract"
)

// DefaultAPIBaseURL is the GitHub REST v3 endpoint.
const DefaultAPIBaseURL = "https://api.github.com"

// defaultTimeout bounds each API request when the caller does not
// supply a client.
const defaultTimeout = 30 * time.Second

// RequestError reports a transport failure or non-success status from
// the API. Handlers use it to tell fetch failures apart from malformed
// response bodies.
type RequestError struct {
	// URL is the request that failed.
	URL string
	// Status is the HTTP status code, or zero for transport failures.
	Status int
	// Err is the underlying transport error, if any.
	Err error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d fetching %s", e.Status, e.URL)
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// requestFailed reports whether err originated in the HTTP layer.
func requestFailed(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// Client talks to the GitHub REST API.
type Client struct {
	client  *http.Client
	apiBase string
	headers map[string]string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIBaseURL points the client at a different API endpoint, such as
// a test server or GitHub Enterprise installation.
func WithAPIBaseURL(base string) Option {
	return func(c *Client) {
		c.apiBase = base
	}
}

// WithHeaders sets headers sent with every request, typically the
// Authorization header for a personal access token.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithLogger sets the logger used for fetch progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client. A nil httpClient gets a default with a 30
// second timeout.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	c := &Client{
		client:  httpClient,
		apiBase: DefaultAPIBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get issues one GET with the client's headers. Transport failures and
// status codes of 400 and above come back as *RequestError.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RequestError{URL: url, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, &RequestError{URL: url, Status: resp.StatusCode}
	}
	return resp, nil
}

// getJSON fetches url and decodes the response body into v.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

// getBytes fetches url and returns the raw response body.
func (c *Client) getBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// getText fetches url and decodes the body as text, falling back to
// latin-1 for bytes that are not valid UTF-8.
func (c *Client) getText(ctx context.Context, url string) (string, error) {
	data, err := c.getBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return extract.DecodeText(data), nil
}

// orNA substitutes the placeholder the output format uses for missing
// metadata fields.
func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
