// Package gateway is the HTTP client for the marketplace backend. It attaches
// the session token, classifies failures and exposes typed endpoints.
package gateway

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
	"golang.org/x/sync/singleflight"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/version"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 15 * time.Second

	// maxBodySize caps how much of a response is read.
	maxBodySize = 4 << 20
)

// TokenSource supplies the bearer token. The session store implements it.
type TokenSource interface {
	CurrentToken() (string, bool)
}

// Config holds configuration for the gateway client.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// DefaultConfig returns the default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   DefaultTimeout,
		UserAgent: "vertex/" + version.GetVersion(),
	}
}

// Payload is the raw JSON body of a successful response.
type Payload []byte

// Decode unmarshals the payload into v.
func (p Payload) Decode(v any) error {
	if len(p) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsNull reports whether the body is empty or the JSON literal null.
func (p Payload) IsNull() bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Client talks to the backend REST API.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	group      singleflight.Group
	config     Config
}

// New creates a gateway client. tokens may be nil for anonymous use.
func New(tokens TokenSource, config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = "vertex"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		tokens:     tokens,
		httpClient: &http.Client{},
		config:     config,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Request performs one call and classifies the outcome. Identical concurrent
// GETs share a single round trip.
func (c *Client) Request(ctx context.Context, method, path string, body any, query url.Values) (Payload, error) {
	endpoint := c.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	token := c.token()

	if method != http.MethodGet || body != nil {
		return c.do(ctx, method, path, endpoint, token, body)
	}

	// The shared round trip outlives any single caller; each caller stops
	// waiting when its own context ends. The per-request timeout still bounds it.
	key := endpoint + "\x00" + token
	flight := c.group.DoChan(key, func() (any, error) {
		return c.do(context.WithoutCancel(ctx), method, path, endpoint, token, nil)
	})

	select {
	case <-ctx.Done():
		return nil, classifyTransport(ctx, method, path, ctx.Err())
	case res := <-flight:
		if res.Shared {
			logger.Debug("collapsed concurrent request", "path", path)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Payload), nil
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	token, ok := c.tokens.CurrentToken()
	if !ok {
		return ""
	}
	return token
}

func (c *Client) do(ctx context.Context, method, path, endpoint, token string, body any) (Payload, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		gerr := classifyTransport(ctx, method, path, err)
		logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "kind", gerr.Kind.String(), "error", err)
		return nil, gerr
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransport(ctx, method, path, fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug("request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(method, path, resp.StatusCode, data)
	}

	return Payload(data), nil
}

// pathf joins escaped segments onto a path prefix.
func pathf(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
