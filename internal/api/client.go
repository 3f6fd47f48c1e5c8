// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the development backend.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the default number of attempts for retryable requests.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	userAgent = "learnlab/1.0"
)

// Client talks to the learning platform backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithMaxRetries sets the maximum number of attempts for retryable requests.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithRateLimit throttles the client to rps requests per second with the
// given burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for request and response lines.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent on authenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a client for the backend at baseURL. An empty baseURL
// means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		baseDelay:  retryBaseDelay,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken replaces the bearer token. An empty token signs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// Login signs in with email and password. On success the client keeps the
// returned token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

// Register creates an account and signs in to it.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// GoogleSignIn exchanges a Google ID token credential for a session.
func (c *Client) GoogleSignIn(ctx context.Context, credential string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/google", map[string]string{"token": credential})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: path, body: body}, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "response did not include a token"}
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// Logout tells the backend the session is over and drops the token. The
// token is dropped even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.SetToken("")
	return c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", auth: true}, nil)
}

// ResetPassword sets a new password using the token from a reset email.
// The request is validated locally before it is sent.
func (c *Client) ResetPassword(ctx context.Context, resetToken string, req ResetPasswordRequest) error {
	if strings.TrimSpace(resetToken) == "" {
		return errors.New("reset token is required")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	path := "/auth/reset-password/" + url.PathEscape(resetToken)
	return c.do(ctx, request{method: http.MethodPost, path: path, body: req}, nil)
}

// Profile returns the signed-in user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/users/profile", auth: true, retry: true}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SendChat sends a message to the tutor and returns its reply.
func (c *Client) SendChat(ctx context.Context, message string) (*ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, errors.New("message is empty")
	}
	var reply ChatMessage
	body := map[string]string{"message": message}
	if err := c.do(ctx, request{method: http.MethodPost, path: "/chats", body: body, auth: true}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

// Topics lists the learning topics.
func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var topics []Topic
	if err := c.do(ctx, request{method: http.MethodGet, path: "/learn", auth: true, retry: true}, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// Problems lists the practice problems.
func (c *Client) Problems(ctx context.Context) ([]Problem, error) {
	var problems []Problem
	if err := c.do(ctx, request{method: http.MethodGet, path: "/problems", auth: true, retry: true}, &problems); err != nil {
		return nil, err
	}
	return problems, nil
}

// Evaluate submits a solution to the evaluator.
func (c *Client) Evaluate(ctx context.Context, req EvaluationRequest) (*Evaluation, error) {
	if req.ProblemID == "" {
		return nil, errors.New("problem id is required")
	}
	if strings.TrimSpace(req.Solution) == "" {
		return nil, errors.New("solution is empty")
	}
	var eval Evaluation
	if err := c.do(ctx, request{method: http.MethodPost, path: "/problems/evaluate", body: req, auth: true}, &eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

type request struct {
	method string
	path   string
	body   any
	// auth requires a token and sends it as a bearer header.
	auth bool
	// retry allows retries on transport errors and temporary statuses.
	retry bool
}

// do performs req and decodes a successful response into out (when non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	token := c.Token()
	if req.auth && token == "" {
		return ErrNotAuthenticated
	}

	var payload []byte
	if req.body != nil {
		var err error
		if payload, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	attempts := 1
	if req.retry {
		attempts = c.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.calculateBackoff(attempt)):
			}
		}

		body, err := c.roundTrip(ctx, req, token, payload)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(err) {
			return err
		}
		lastErr = err
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// roundTrip sends one attempt and returns the body of a 2xx response.
func (c *Client) roundTrip(ctx context.Context, req request, token string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	c.logRequest(httpReq)
	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("api transport error", zap.String("path", req.path), zap.Error(err))
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	c.logResponse(httpReq, resp, time.Since(start))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp.StatusCode, data)
	}
	return data, nil
}

// transportError wraps a failure to get any response.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return "request failed: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// isRetryable determines if an error should trigger a retry.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	var te *transportError
	return errors.As(err, &te)
}

// calculateBackoff returns the delay to wait before the next retry.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// logRequest logs method and path only. Headers carry the token and bodies
// carry passwords and solutions.
func (c *Client) logRequest(req *http.Request) {
	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", redactPath(req.URL.Path)))
}

func (c *Client) logResponse(req *http.Request, resp *http.Response, d time.Duration) {
	c.logger.Debug("api response",
		zap.String("method", req.Method),
		zap.String("path", redactPath(req.URL.Path)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", d))
}

// redactPath hides the reset token in password reset URLs.
func redactPath(path string) string {
	const prefix = "/reset-password/"
	if i := strings.Index(path, prefix); i >= 0 {
		return path[:i+len(prefix)] + "[REDACTED]"
	}
	return path
}
