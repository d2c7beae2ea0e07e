// Package watermarkapi is the HTTP client of the remote watermarking server.
package watermarkapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

const (
	WatermarkPath   = "/api/watermark"
	RequestIDHeader = "X-Request-ID"
)

type Client interface {
	Apply(ctx context.Context, req entity.WatermarkRequest) (*entity.WatermarkResponse, error)
	// Fetch streams the image at rawURL. Relative URLs resolve against the base URL.
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", entity.ErrUpstreamStatus, e.Status)
}

func (e *StatusError) Unwrap() error {
	return entity.ErrUpstreamStatus
}

type httpClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logrus.FieldLogger
}

type Option func(*httpClient)

func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) { h.http = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(h *httpClient) { h.log = l }
}

// WithTimeout bounds each call. Zero keeps the default of no timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *httpClient) {
		if d > 0 {
			c := *h.http
			c.Timeout = d
			h.http = &c
		}
	}
}

// NewClient builds a client for the server at baseURL. An empty baseURL
// targets the same origin, which is what the browser build wants.
func NewClient(baseURL string, opts ...Option) (Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}

	c := &httpClient{
		baseURL: u,
		http:    &http.Client{},
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *httpClient) Apply(ctx context.Context, req entity.WatermarkRequest) (*entity.WatermarkResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(WatermarkPath), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, requestID)

	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"text":       req.Text,
		"image_size": len(req.Image),
	})

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		log.WithError(err).Error("Watermark request failed")
		return nil, err
	}
	defer resp.Body.Close()

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		log.Error("Watermark server returned an error status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var result entity.WatermarkResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.WithError(err).Error("Failed to decode watermark response")
		return nil, fmt.Errorf("%w: %v", entity.ErrBadResponse, err)
	}
	if result.Success && result.ImageURL == "" {
		return nil, fmt.Errorf("%w: success without image_url", entity.ErrBadResponse)
	}

	log.WithField("success", result.Success).Debug("Watermark response received")
	return &result, nil
}

func (c *httpClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(rawURL), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *httpClient) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return c.baseURL.String() + ref
	}
	if u.IsAbs() {
		return u.String()
	}
	base := *c.baseURL
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(u.Path, "/"),
		RawQuery: u.RawQuery,
	}).String()
}
