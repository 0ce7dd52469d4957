// Package graphapi is the HTTP client of the remote graph query service.
package graphapi

import (
	"bytes"
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

	"go.opentelemetry.io/otel/attribute"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/observability"
)

// ErrMissingBaseURL is returned when the client is built without a service URL.
var ErrMissingBaseURL = errors.New("graph api base url is required")

// Timeouts bounds individual calls. Zero values fall back to Default.
type Timeouts struct {
	Default      time.Duration
	ShortestPath time.Duration
	Distances    time.Duration
	Traversal    time.Duration
}

// DefaultTimeouts returns the per-call limits used by the interactive client.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Default:      60 * time.Second,
		ShortestPath: 20 * time.Second,
		Distances:    120 * time.Second,
		Traversal:    60 * time.Second,
	}
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Timeouts   Timeouts
	Logger     *slog.Logger
}

// Client talks to the graph query service over HTTP.
type Client struct {
	baseURL  string
	http     *http.Client
	timeouts Timeouts
	logger   *slog.Logger
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	def := DefaultTimeouts()
	if opts.Timeouts.Default <= 0 {
		opts.Timeouts.Default = def.Default
	}
	if opts.Timeouts.ShortestPath <= 0 {
		opts.Timeouts.ShortestPath = def.ShortestPath
	}
	if opts.Timeouts.Distances <= 0 {
		opts.Timeouts.Distances = def.Distances
	}
	if opts.Timeouts.Traversal <= 0 {
		opts.Timeouts.Traversal = def.Traversal
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:  baseURL,
		http:     opts.HTTPClient,
		timeouts: opts.Timeouts,
		logger:   opts.Logger.With("component", "graphapi"),
	}, nil
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op      string
	method  string
	path    string
	graph   domain.GraphContext
	params  url.Values
	timeout time.Duration
}

// do executes a call and returns the raw body of a successful response.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	if cl.timeout <= 0 {
		cl.timeout = c.timeouts.Default
	}
	ctx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	params := cl.params
	if params == nil {
		params = url.Values{}
	}
	graphName := ""
	if cl.graph != "" {
		graphName = cl.graph.RemoteName()
		params.Set("graph", graphName)
	}

	ctx, span := observability.StartQuerySpan(ctx, cl.op, graphName)
	body, status, err := c.roundTrip(ctx, cl, params)
	span.SetAttributes(attribute.Int("http.status_code", status))
	observability.EndSpan(span, err)
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, cl call, params url.Values) ([]byte, int, error) {
	target := c.baseURL + cl.path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	var reqBody io.Reader
	if cl.method == http.MethodPost {
		reqBody = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, reqBody)
	if err != nil {
		return nil, 0, &domain.RemoteError{Op: cl.op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	observability.InjectHeaders(ctx, req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("graph api request failed", "op", cl.op, "path", cl.path, "error", err)
		return nil, 0, &domain.RemoteError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &domain.RemoteError{Op: cl.op, StatusCode: resp.StatusCode, Err: err}
	}
	c.logger.Debug("graph api request",
		"op", cl.op,
		"path", cl.path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &domain.RemoteError{
			Op:         cl.op,
			StatusCode: resp.StatusCode,
			Detail:     errorMessage(body, true),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if msg := errorMessage(body, false); msg != "" {
		return nil, resp.StatusCode, &domain.RemoteError{Op: cl.op, StatusCode: resp.StatusCode, Detail: msg}
	}
	return body, resp.StatusCode, nil
}

// errorMessage extracts a server supplied message: {"detail": ...} from
// error responses, then {"error": "..."}.
func errorMessage(body []byte, withDetail bool) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
		Error  json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if withDetail {
		if msg := rawText(envelope.Detail); msg != "" {
			return msg
		}
	}
	return rawText(envelope.Error)
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}

func decode(op string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.RemoteError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
