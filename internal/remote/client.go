package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
	"github.com/MrSnakeDoc/pinned/internal/logger"
	"github.com/MrSnakeDoc/pinned/internal/utils"
)

const (
	// DefaultTimeout bounds every request, including the connectivity probe.
	DefaultTimeout = 5 * time.Second
	// DefaultAPIPrefix is where the comment routes live under the base URL.
	DefaultAPIPrefix = "/api"

	maxErrorBody = 4 << 10
)

// ErrMissingID is returned when the server acknowledges a create without
// handing back the id it assigned.
var ErrMissingID = errors.New("created comment has no id")

// StatusError is returned for any non-2xx answer other than 404.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Options configures a Client.
type Options struct {
	BaseURL    string        // ex: "http://localhost:8080"
	APIPrefix  string        // default "/api"
	Timeout    time.Duration // default 5s
	HTTPClient *http.Client  // optional, overrides Timeout
}

// Client is a thin typed client over the comment REST surface.
// It never retries and never caches.
type Client struct {
	base   *url.URL
	prefix string
	http   *http.Client
	logger logger.Logger
}

// New builds a client. The base URL must be absolute.
func New(opts Options, log logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host are required", opts.BaseURL)
	}

	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = DefaultAPIPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{base: base, prefix: prefix, http: hc, logger: log}, nil
}

// Create persists c and returns the record with its server-assigned id.
func (c *Client) Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.do(ctx, http.MethodPost, "/comments", nil, comment, &out); err != nil {
		return nil, err
	}
	if !out.HasID() {
		return nil, fmt.Errorf("POST /comments: %w", ErrMissingID)
	}
	return &out, nil
}

// ListByPage returns the comments anchored to pageURL.
func (c *Client) ListByPage(ctx context.Context, pageURL string) ([]*domain.Comment, error) {
	return c.list(ctx, url.Values{"pageUrl": {pageURL}})
}

// ListByStatus returns every comment in status.
func (c *Client) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Comment, error) {
	return c.list(ctx, url.Values{"status": {string(status)}})
}

// List returns every comment.
func (c *Client) List(ctx context.Context) ([]*domain.Comment, error) {
	return c.list(ctx, nil)
}

func (c *Client) list(ctx context.Context, query url.Values) ([]*domain.Comment, error) {
	var out []*domain.Comment
	if err := c.do(ctx, http.MethodGet, "/comments", query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Comment{}
	}
	return out, nil
}

// Get fetches one comment; domain.ErrNotFound when absent.
func (c *Client) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.do(ctx, http.MethodGet, commentPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update; domain.ErrNotFound when absent.
func (c *Client) Update(ctx context.Context, id int64, u domain.CommentUpdate) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.do(ctx, http.MethodPut, commentPath(id), nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes one comment; domain.ErrNotFound when absent.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, commentPath(id), nil, nil, nil)
}

func commentPath(id int64) string {
	return "/comments/" + strconv.FormatInt(id, 10)
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + c.prefix + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("remote request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer utils.Close(resp.Body)

	c.logger.Debug("remote request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

// IsNotFound reports whether err means the comment does not exist remotely.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
