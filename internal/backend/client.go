// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backend forwards admin operations to the external content
// backend. Every call is a single HTTP round trip bounded by a timeout;
// all failures (non-2xx status, transport error, timeout, success:false
// body) come back as *Error carrying a human-readable message.
package backend

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
)

const (
	// DefaultTimeout bounds ordinary JSON calls.
	DefaultTimeout = 10 * time.Second
	// DefaultUploadTimeout bounds file uploads.
	DefaultUploadTimeout = 5 * time.Minute
)

// Options configures a Client.
type Options struct {
	BaseURL       string
	Token         string // static bearer token, used when a request carries none
	Timeout       time.Duration
	UploadTimeout time.Duration
	HTTPClient    *http.Client
}

// Client issues requests against the content backend.
type Client struct {
	baseURL       string
	token         string
	timeout       time.Duration
	uploadTimeout time.Duration
	http          *http.Client
}

// New creates a backend client. Zero timeouts take the defaults.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = DefaultUploadTimeout
	}
	if opts.HTTPClient == nil {
		// Deadlines come from the per-request context, not the client.
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		token:         opts.Token,
		timeout:       opts.Timeout,
		uploadTimeout: opts.UploadTimeout,
		http:          opts.HTTPClient,
	}
}

// Request describes one outbound call.
type Request struct {
	Method string
	// Path is relative to the base URL with parameters already
	// substituted; build it with Path.
	Path  string
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// Upload is streamed as is with ContentType (a multipart boundary
	// included). It selects the upload timeout.
	Upload      io.Reader
	ContentType string
	// Token overrides the client's static bearer token.
	Token  string
	Header http.Header
}

// Response is a successful backend reply.
type Response struct {
	Status  int
	Data    any
	Message string
	Meta    map[string]any
	Stats   map[string]any
}

// Path joins escaped path segments ("categories", "5") into a request path.
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

// Do performs the request and decodes the backend reply.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := c.timeout
	if req.Upload != nil {
		timeout = c.uploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	contentType := ""
	switch {
	case req.Upload != nil:
		body = req.Upload
		contentType = req.ContentType
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &Error{Message: "failed to encode request body", Err: fmt.Errorf("backend marshal: %w", err)}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.url(req.Path, req.Query)

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Message: "failed to build backend request", Err: fmt.Errorf("backend request: %w", err)}
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	token := req.Token
	if token == "" {
		token = c.token
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	slog.Debug("backend call",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	return decode(resp.StatusCode, respBody)
}

// url builds the absolute request URL. Empty query values are dropped,
// as are the literal strings "null" and "undefined" a browser may send
// for unset form fields.
func (c *Client) url(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	clean := url.Values{}
	for key, values := range query {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || v == "null" || v == "undefined" {
				continue
			}
			clean.Add(key, v)
		}
	}
	if len(clean) > 0 {
		target += "?" + clean.Encode()
	}
	return target
}

// transportError classifies a failed round trip.
func transportError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Message: "request timed out", Err: fmt.Errorf("backend timeout: %w: %v", context.DeadlineExceeded, err)}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Message: "Request cancelled", Err: fmt.Errorf("backend cancelled: %w", err)}
	}
	return &Error{Message: "Unable to reach content backend", Err: fmt.Errorf("backend http: %w", err)}
}
