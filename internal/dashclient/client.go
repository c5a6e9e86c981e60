// Package dashclient talks to the smart-home backend: it polls the
// environment and notification snapshots, downloads the captured face image
// and posts operator decisions.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cristianoliveira/smarthome-dash/internal/domain"
	"github.com/cristianoliveira/smarthome-dash/internal/version"
)

// Backend endpoints.
const (
	EnvironmentPath    = "/api/environment"
	NotificationsPath  = "/api/notifications"
	FaceImagePath      = "/temp_face.jpg"
	SecurityActionPath = "/api/security_action"
)

const (
	maxJSONBody  = 1 << 20
	maxImageBody = 16 << 20

	// DefaultTimeout bounds a single request. Polling has no retry or backoff;
	// a timed-out request is just a failed cycle.
	DefaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the dashboard backend. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// New creates a client for the backend at baseURL (e.g. http://127.0.0.1:5000).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchEnvironment polls GET /api/environment. A body that is null or an
// empty object yields a nil snapshot and no error.
func (c *Client) FetchEnvironment(ctx context.Context) (*domain.EnvironmentSnapshot, error) {
	body, err := c.get(ctx, EnvironmentPath, maxJSONBody)
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, EnvironmentPath, err)
	}
	if len(probe) == 0 {
		return nil, nil
	}

	var snap domain.EnvironmentSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, EnvironmentPath, err)
	}
	return &snap, nil
}

// FetchNotifications polls GET /api/notifications. The payload must carry
// unread_count; anything else is a decode failure.
func (c *Client) FetchNotifications(ctx context.Context) (*domain.NotificationSnapshot, error) {
	body, err := c.get(ctx, NotificationsPath, maxJSONBody)
	if err != nil {
		return nil, err
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, NotificationsPath, err)
	}
	if _, ok := probe["unread_count"]; !ok {
		return nil, fmt.Errorf("%w: %s: missing unread_count", ErrDecode, NotificationsPath)
	}

	var snap domain.NotificationSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, NotificationsPath, err)
	}
	if snap.UnreadCount < 0 {
		return nil, fmt.Errorf("%w: %s: negative unread_count %d", ErrDecode, NotificationsPath, snap.UnreadCount)
	}
	return &snap, nil
}

// FaceImageURL returns the face snapshot URL with a cache-busting query
// parameter derived from t, so a new event never shows a cached image.
func (c *Client) FaceImageURL(t time.Time) string {
	return c.baseURL + FaceImagePath + "?t=" + strconv.FormatInt(t.UnixMilli(), 10)
}

// FaceImage is a downloaded face snapshot.
type FaceImage struct {
	URL         string
	ContentType string
	Data        []byte
}

// FetchFaceImage downloads the latest captured face using FaceImageURL(t).
func (c *Client) FetchFaceImage(ctx context.Context, t time.Time) (*FaceImage, error) {
	url := c.FaceImageURL(t)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, FaceImagePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: FaceImagePath, StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, FaceImagePath, err)
	}
	return &FaceImage{URL: url, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// ActionResponse is the backend's reply to a security decision.
type ActionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SecurityAction posts an operator decision to POST /api/security_action.
// A reply with status "error" is returned as ErrRejected.
func (c *Client) SecurityAction(ctx context.Context, d domain.Decision) (*ActionResponse, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal decision: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+SecurityActionPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, SecurityActionPath, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, SecurityActionPath, err)
	}
	var out ActionResponse
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &out); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, SecurityActionPath, err)
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &out, &StatusError{Endpoint: SecurityActionPath, StatusCode: resp.StatusCode, Message: out.Message}
	}
	if out.Status == "error" {
		return &out, fmt.Errorf("%w: %s", ErrRejected, out.Message)
	}
	return &out, nil
}

// get issues a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, limit))
		return nil, &StatusError{Endpoint: path, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTransport, path, err)
	}
	return body, nil
}
