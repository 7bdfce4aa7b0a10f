// Package solver talks to the external fluid-network solver.
//
// A solve is one POST of the request-shaped diagram as JSON. The request
// carries an anti-forgery header whose value comes from a cookie the
// client's jar holds for the solver URL. Any response body that decodes as a
// solve envelope is returned as-is, whatever its HTTP status; failing to
// obtain or decode a response is a TransportError. Requests are never
// retried.
package solver

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/crypto/blake2b"

	"fluidnet/internal/domain"
)

const (
	DefaultCSRFCookie = "csrftoken"
	DefaultCSRFHeader = "X-CSRFToken"
	DefaultTimeout    = 30 * time.Second

	maxResponseBytes = 10 << 20
)

// TransportError reports that no usable response was obtained
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client posts solve requests to a fixed endpoint
type Client struct {
	endpoint   *url.URL
	http       *http.Client
	csrfCookie string
	csrfHeader string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar gets one so the anti-forgery cookie can be tracked.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the overall request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCSRF sets the cookie the token is read from and the header it is sent in
func WithCSRF(cookieName, headerName string) Option {
	return func(c *Client) {
		if cookieName != "" {
			c.csrfCookie = cookieName
		}
		if headerName != "" {
			c.csrfHeader = headerName
		}
	}
}

// New creates a client for the solve endpoint
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse solver url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("solver url %q: unsupported scheme", endpoint)
	}

	c := &Client{
		endpoint:   u,
		http:       &http.Client{Timeout: DefaultTimeout},
		csrfCookie: DefaultCSRFCookie,
		csrfHeader: DefaultCSRFHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Endpoint returns the solve URL
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// SetToken stores an anti-forgery token as the cookie for the solver URL
func (c *Client) SetToken(token string) {
	c.http.Jar.SetCookies(c.endpoint, []*http.Cookie{{Name: c.csrfCookie, Value: token, Path: "/"}})
}

// Token returns the anti-forgery cookie value for the solver URL, or ""
func (c *Client) Token() string {
	for _, ck := range c.http.Jar.Cookies(c.endpoint) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

// Solve sends the diagram and decodes the solver's envelope
func (c *Client) Solve(ctx context.Context, diagram domain.Diagram) (*domain.SolveResponse, error) {
	body, err := EncodeRequest(diagram)
	if err != nil {
		return nil, err
	}
	return c.SolveRaw(ctx, body)
}

// SolveRaw sends an already encoded request body
func (c *Client) SolveRaw(ctx context.Context, body []byte) (*domain.SolveResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build solve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(c.csrfHeader, c.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	var sr domain.SolveResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&sr); err != nil {
		return nil, &TransportError{Op: "decode response", Err: fmt.Errorf("status %d: %w", resp.StatusCode, err)}
	}
	return &sr, nil
}

// EncodeRequest renders the solve request body
func EncodeRequest(diagram domain.Diagram) ([]byte, error) {
	if diagram == nil {
		diagram = domain.Diagram{}
	}
	body, err := json.Marshal(diagram)
	if err != nil {
		return nil, fmt.Errorf("encode solve request: %w", err)
	}
	return body, nil
}

// RequestDigest returns the hex BLAKE2b-256 digest of an encoded request.
// Journals store it instead of the diagram.
func RequestDigest(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
