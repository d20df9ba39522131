// Package transport performs authenticated requests against the platform API
// and hands back the status code, the raw body and a best-effort JSON decode.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/config"
)

// TracerName is the name of the tracer used for request spans.
const TracerName = "github.com/shamank/adama-sdk-go/transport"

// RequestIDHeader carries a per-request identifier for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// Transport is the request surface the SDK needs. *Client implements it;
// tests substitute their own.
type Transport interface {
	Get(ctx context.Context, path string, params url.Values) (*Response, error)
	Post(ctx context.Context, path string, body io.Reader, contentType string) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
}

// Response is a completed HTTP exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// JSON is the decoded body, or nil when the body is not valid JSON.
	JSON any
	// JSONErr records why the body could not be decoded.
	JSONErr error
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Client is the production Transport. It adds the bearer token, user agent and
// a request ID to every request and wraps each one in a tracing span.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
	tracer    trace.Tracer
	requestID func() string
}

var _ Transport = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTracerProvider selects the provider request spans are created from.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(TracerName)
		}
	}
}

// New builds a Client for the given credential. The base URL is used as-is;
// callers are expected to pass a validated config.
func New(cred config.Credential, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(cred.BaseURL, "/"),
		token:     cred.Token,
		userAgent: config.DefaultUserAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
		tracer:    otel.GetTracerProvider().Tracer(TracerName),
		requestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues an authenticated GET on path with the given query parameters.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, c.resolve(path), params, nil, "", true)
}

// Post issues an authenticated POST on path.
func (c *Client) Post(ctx context.Context, path string, body io.Reader, contentType string) (*Response, error) {
	return c.do(ctx, http.MethodPost, c.resolve(path), nil, body, contentType, true)
}

// Delete issues an authenticated DELETE on path.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, c.resolve(path), nil, nil, "", true)
}

// GetURL issues an unauthenticated GET against an absolute URL. The bearer
// token is never sent to hosts other than the platform.
func (c *Client) GetURL(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, params, nil, "", false)
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) do(ctx context.Context, method, target string, params url.Values, body io.Reader, contentType string, auth bool) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", target, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "platform "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := c.requestID()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	zap.L().Debug("platform request",
		zap.String("method", method),
		zap.String("url", u.String()),
		zap.String("request_id", requestID))

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Error("platform request failed",
			zap.String("method", method),
			zap.String("url", u.String()),
			zap.String("request_id", requestID),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			zap.L().Error("failed to close response body", zap.Error(cerr))
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, resp.Status)
	}

	zap.L().Debug("platform response",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.String("request_id", requestID))

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	out.JSONErr = json.Unmarshal(data, &out.JSON)
	if out.JSONErr != nil {
		out.JSON = nil
	}
	return out, nil
}

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Field    string
	FileName string
	Content  []byte
}

// Multipart encodes fields and files as multipart/form-data and returns the
// body together with its content type.
func Multipart(fields map[string]string, files ...FilePart) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write form file %s: %w", f.Field, err)
		}
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
