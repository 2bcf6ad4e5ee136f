// Package webhook talks to the external people-search webhook and turns its
// loosely typed payloads into canonical search results.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/octobees/decisionfindr/api/internal/entity"
	"github.com/octobees/decisionfindr/api/internal/logging"
)

const (
	defaultTimeout      = 60 * time.Second
	DefaultMaxBodyBytes = 10 << 20
)

// Fetcher produces canonical results for a title/company search.
type Fetcher interface {
	FetchProfiles(ctx context.Context, titles, companies []string) ([]entity.SearchResult, error)
}

// Client calls the search webhook.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	path        string
	audience    string
	timeout     time.Duration
	maxBody     int64
	transformer *Transformer
	logger      *slog.Logger
}

// Option configures optional dependencies.
type Option func(*Client)

// WithHTTPClient injects the HTTP client, bypassing ID token discovery.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithAudience requests Google-signed ID tokens for the given audience.
func WithAudience(audience string) Option {
	return func(c *Client) {
		c.audience = strings.TrimSpace(audience)
	}
}

// WithTimeout bounds each webhook call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of a webhook reply is read.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithTransformer overrides the payload transformer.
func WithTransformer(t *Transformer) Option {
	return func(c *Client) {
		if t != nil {
			c.transformer = t
		}
	}
}

// WithLogger sets the logger used for degraded payload warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a webhook client for {baseURL}/webhook/{path}.
func NewClient(baseURL, path string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("webhook base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid webhook base URL: %w", err)
	}
	c := &Client{
		baseURL:     baseURL,
		path:        strings.Trim(strings.TrimSpace(path), "/"),
		timeout:     defaultTimeout,
		maxBody:     DefaultMaxBodyBytes,
		transformer: NewTransformer(""),
		logger:      logging.OrDefault(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.path == "" {
		return nil, errors.New("webhook path must not be empty")
	}
	if c.httpClient == nil {
		c.httpClient = c.defaultHTTPClient()
	}
	return c, nil
}

func (c *Client) defaultHTTPClient() *http.Client {
	if c.audience != "" {
		idc, err := idtoken.NewClient(context.Background(), c.audience)
		if err == nil {
			idc.Timeout = c.timeout
			return idc
		}
		c.logger.Warn("falling back to unauthenticated webhook client", "error", err)
	}
	return &http.Client{Timeout: c.timeout}
}

// FetchProfiles queries the webhook with comma-joined titles and companies.
// Network-class failures come back as *FetchError; an unparseable 2xx payload
// yields an empty slice.
func (c *Client) FetchProfiles(ctx context.Context, titles, companies []string) ([]entity.SearchResult, error) {
	query := url.Values{}
	query.Set("titles", strings.Join(titles, ","))
	query.Set("companies", strings.Join(companies, ","))

	status, _, body, err := c.do(ctx, c.path, query.Encode())
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest {
		return nil, &FetchError{Op: OpStatus, StatusCode: status, Err: errors.New(extractError(body))}
	}

	results, err := c.transformer.Parse(body)
	if err != nil {
		c.logger.Warn("webhook returned unparseable payload", "status", status, "error", err)
		return []entity.SearchResult{}, nil
	}
	return results, nil
}

// ForwardResponse is a webhook reply passed through verbatim.
type ForwardResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward issues GET {base}/webhook/{path}?{rawQuery} and returns the reply untouched.
func (c *Client) Forward(ctx context.Context, path, rawQuery string) (*ForwardResponse, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return nil, fmt.Errorf("invalid webhook path %q", path)
	}
	status, contentType, body, err := c.do(ctx, path, rawQuery)
	if err != nil {
		return nil, err
	}
	return &ForwardResponse{StatusCode: status, ContentType: contentType, Body: body}, nil
}

func (c *Client) do(ctx context.Context, path, rawQuery string) (int, string, []byte, error) {
	target := c.baseURL + "/webhook/" + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rid := RequestIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", nil, &FetchError{Op: OpRequest, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return resp.StatusCode, "", nil, &FetchError{Op: OpRead, StatusCode: resp.StatusCode, Err: err}
	}
	if int64(len(body)) > c.maxBody {
		return resp.StatusCode, "", nil, &FetchError{Op: OpSize, StatusCode: resp.StatusCode, Err: ErrBodyTooLarge}
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

func extractError(body []byte) string {
	if len(body) == 0 {
		return "webhook returned an error"
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(body)
}

type requestIDKey struct{}

// WithRequestID attaches a request id that outgoing webhook calls propagate.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id set by WithRequestID.
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}

var _ Fetcher = (*Client)(nil)
