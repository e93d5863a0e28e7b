// Package marketplace is the HTTP client for the rental marketplace APIs:
// reservations, the server-side cart, studio availability and wishlists.
// It is a pass-through boundary; conflict resolution and reservation state
// are owned by the marketplace, never asserted here.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the service token and can mint a fresh one after the
// current token is rejected.
type TokenSource interface {
	Token() string
	Refresh(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that can never refresh.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

func (t StaticToken) Refresh(ctx context.Context) (string, error) {
	return "", fmt.Errorf("static token cannot be refreshed")
}

// Client represents the marketplace HTTP client.
type Client struct {
	baseURL string
	ua      string
	http    *http.Client

	mu     sync.Mutex
	tokens TokenSource
	token  string
}

// NewClient creates a new marketplace client.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration, ua string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ua:      ua,
		tokens:  tokens,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
	if tokens != nil {
		c.token = tokens.Token()
	}
	return c
}

// envelope is the marketplace response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// APIError is a structured marketplace error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketplace error: %s - %s (status=%d)", e.Code, e.Message, e.Status)
}

// IsAPIError reports whether err is a structured marketplace error, and
// returns it when so.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// doJSON issues a request and decodes the envelope's data into out (out may
// be nil for void operations). An expired-token 401 triggers exactly one
// token refresh and one replay of the same request before failing.
func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("marketplace request error: client is nil")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("marketplace config error: base_url is empty")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marketplace request error: %w", err)
		}
	}

	resp, respBody, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.refreshToken(ctx); err != nil {
			return fmt.Errorf("marketplace auth error: %w", err)
		}
		resp, respBody, err = c.roundTrip(ctx, method, path, payload)
		if err != nil {
			return err
		}
	}

	var env envelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			return fmt.Errorf("marketplace response error: status=%d body=%s", resp.StatusCode, truncate(respBody))
		}
	}

	if resp.StatusCode >= 400 || !env.Success {
		if env.Error != nil {
			env.Error.Status = resp.StatusCode
			return env.Error
		}
		return fmt.Errorf("marketplace http error: status=%d body=%s", resp.StatusCode, truncate(respBody))
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("marketplace response error: %w", err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("marketplace request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, classifyRequestError(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("marketplace response error: %w", err)
	}
	return resp, body, nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) refreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil {
		return fmt.Errorf("no token source configured")
	}
	token, err := c.tokens.Refresh(ctx)
	if err != nil {
		return err
	}
	c.token = token
	return nil
}

func truncate(b []byte) string {
	const max = 1000
	if len(b) > max {
		return string(b[:max]) + "...<truncated>"
	}
	return string(b)
}

func classifyRequestError(ctx context.Context, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("marketplace timeout: %w", err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("marketplace network error: %w", err)
	}
	return fmt.Errorf("marketplace request error: %w", err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
