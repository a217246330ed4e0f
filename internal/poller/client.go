package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultMaxBodySize caps a response body.
const DefaultMaxBodySize = 16 << 20 // 16MB

// ErrResponseTooLarge is reported in [Response.Error] when a body exceeds
// the client's size limit. The body is not returned.
var ErrResponseTooLarge = errors.New("response body too large")

// connection pooling limits; a loop only ever talks to one host
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 2
	defaultIdleConnTimeout     = 60 * time.Second // conservative: matches common ALB defaults
)

// Request is an outbound poll request as composed by [RequestBuilder].
type Request struct {
	// Method is the HTTP method. Empty defaults to GET.
	Method string

	// URL is the stream endpoint without the query.
	URL string

	// Query holds the resource and since parameters.
	Query url.Values

	// Headers holds the Authorization header.
	Headers map[string]string
}

// Target returns URL with Query merged into any query it already carries.
func (r Request) Target() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", err
	}
	if len(r.Query) == 0 {
		return u.String(), nil
	}
	q := u.Query()
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Response holds the result of a request sent by a [Transport].
type Response struct {
	// Body contains the HTTP response body.
	Body []byte

	// StatusCode is the HTTP status code.
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// nil indicates the request completed (though status may indicate an error).
	Error error
}

// Transport sends a [Request] and reports the outcome. Errors are carried
// in [Response.Error] rather than returned separately.
type Transport interface {
	Send(ctx context.Context, req Request, timeout time.Duration) Response
}

// Client is the default [Transport], backed by a pooled net/http client.
//
// Client uses per-request timeouts via context rather than a global timeout.
// A body larger than the size limit fails with [ErrResponseTooLarge]
// instead of being truncated.
type Client struct {
	httpClient  *http.Client
	maxBodySize int64
}

// NewClient creates a new [Client] limiting bodies to maxBodySize bytes.
// A non-positive maxBodySize selects [DefaultMaxBodySize].
func NewClient(maxBodySize int64) *Client {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		maxBodySize: maxBodySize,
	}
}

// Send performs the request and returns a structured [Response].
//
// The timeout is applied via context cancellation. A non-positive timeout
// leaves the request bounded only by ctx.
func (c *Client) Send(ctx context.Context, r Request, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := r.Target()
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("invalid request url: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	req.Header.Set("Accept", "application/json")
	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// one byte past the limit tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if int64(len(body)) > c.maxBodySize {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("%w: limit is %d bytes", ErrResponseTooLarge, c.maxBodySize),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
// Safe to call multiple times and on a nil receiver. The client remains
// usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
