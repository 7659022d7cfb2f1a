// Package platform is the HTTP client for the remote platform REST API. All
// console traffic to the platform goes through one Client so the bearer token
// configured after sign-in applies to every request.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/novamart/admin-console/internal/app/models"
	"github.com/novamart/admin-console/internal/app/observability/metrics"
)

// Client talks to the platform API. It is safe for concurrent use; the token
// slot is guarded so sign-in and sign-out can swap it under a live server.
//
// The underlying http.Client carries no timeout: a request runs until it
// completes or the caller's context is cancelled.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
	metrics    *metrics.AppMetrics

	mu    sync.RWMutex
	token string
}

// NewClient returns a ready-to-use platform client. The token slot starts
// empty; requests are unauthenticated until SetToken is called.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// SetMetrics attaches the metric instruments. Optional; a client without them
// simply records nothing.
func (c *Client) SetMetrics(m *metrics.AppMetrics) {
	c.metrics = m
}

// SetToken installs the bearer token applied to all subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken removes the bearer token; subsequent requests go out without an
// Authorization header.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// Token returns the currently installed bearer token, empty when none is set.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// APIError is a non-2xx platform response. Message carries the server's
// `message` field when the body provided one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("platform: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("platform: unexpected status %d", e.StatusCode)
}

// do marshals body (when non-nil), issues the request with the current bearer
// token, and decodes the JSON response into v (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, v interface{}) error {
	l := c.logger.With(zap.String("method", method), zap.String("path", path))

	var bodyReader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		l.Warn("Platform request failed", zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.UpstreamRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
			attribute.String("method", method),
			attribute.Int("status", resp.StatusCode),
		))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		const maxErrorBody = 1 << 20
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var errBody struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(data, &errBody); err == nil {
			apiErr.Message = errBody.Message
		}
		l.Warn("Platform returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SignIn exchanges the operator's credentials for a bearer token and account
// record. It wraps POST /auth/admin/login. The token slot is NOT updated
// here; session bookkeeping owns that.
func (c *Client) SignIn(ctx context.Context, emailOrPhone, password string) (*models.Credentials, error) {
	reqBody := struct {
		EmailOrPhone string `json:"emailOrPhone"`
		Password     string `json:"password"`
	}{EmailOrPhone: emailOrPhone, Password: password}

	var resp struct {
		Data models.Credentials `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "auth/admin/login", reqBody, &resp); err != nil {
		return nil, err
	}

	if resp.Data.Token == "" || resp.Data.User == nil {
		return nil, fmt.Errorf("sign-in response missing token or user: %w", models.ErrUpstream)
	}
	return &resp.Data, nil
}

// Profile fetches the account record for userID. It wraps GET /users/:id.
func (c *Client) Profile(ctx context.Context, userID string) (*models.User, error) {
	var resp struct {
		Data *models.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "users/"+userID, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, fmt.Errorf("profile response missing user: %w", models.ErrUpstream)
	}
	return resp.Data, nil
}
