// Package apiclient is a fasthttp client for the dark chess HTTP API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/dark-chess/pkg/darkdto"
)

// ErrNotFound is returned when a secret resolves to nothing (null join responses).
var ErrNotFound = errors.New("dark chess: not found")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Problem darkdto.Problem
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dark chess api error: status=%d problem=%s", e.Status, e.Problem.Error())
}

type Client struct {
	baseURL string
	http    *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Create(ctx context.Context) (*darkdto.CreateResponse, error) {
	var out darkdto.CreateResponse
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/game/new", &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) JoinSecret(ctx context.Context, whiteSecret string) (string, error) {
	var out darkdto.JoinSecretResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(whiteSecret, "join_secret"), &out, true); err != nil {
		return "", err
	}
	if out.JoinSecret == nil {
		return "", ErrNotFound
	}
	return *out.JoinSecret, nil
}

func (c *Client) Join(ctx context.Context, joinSecret string) (*darkdto.JoinResponse, error) {
	var out darkdto.JoinResponse
	err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(joinSecret, "join"), &out, false)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == fasthttp.StatusNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if out.BlackSecret == nil {
		return nil, ErrNotFound
	}
	return &out, nil
}

func (c *Client) ValidateMove(ctx context.Context, secret string, xFrom, yFrom, xTo, yTo int) (bool, error) {
	var out darkdto.ValidityResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(secret, "move-validity", xFrom, yFrom, xTo, yTo), &out, true); err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *Client) Move(ctx context.Context, secret string, xFrom, yFrom, xTo, yTo int) (*darkdto.PlayerViewAndStats, error) {
	var out darkdto.PlayerViewAndStats
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(secret, "move", xFrom, yFrom, xTo, yTo), &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Promote(ctx context.Context, secret string, x, y int, kind string) (*darkdto.PlayerViewAndStats, error) {
	var out darkdto.PlayerViewAndStats
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(secret, "promote", x, y, kind), &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) State(ctx context.Context, secret string) (*darkdto.PlayerViewAndStats, error) {
	var out darkdto.PlayerViewAndStats
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(secret, "state"), &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reachable(ctx context.Context, secret string, x, y int) ([]darkdto.Move, error) {
	var out darkdto.ReachableResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(secret, "reachable", x, y), &out, true); err != nil {
		return nil, err
	}
	return out.Moves, nil
}

// BoardPNG fetches the rendered view of secret's player.
func (c *Client) BoardPNG(ctx context.Context, secret string) ([]byte, error) {
	return c.do(ctx, fasthttp.MethodGet, gamePath(secret, "board.png"), true)
}

func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, fasthttp.MethodGet, "/healthz", true)
	return err
}

func gamePath(secret, action string, args ...any) string {
	var b strings.Builder
	b.WriteString("/game/")
	b.WriteString(url.PathEscape(secret))
	b.WriteString("/")
	b.WriteString(action)
	for _, a := range args {
		fmt.Fprintf(&b, "/%v", a)
	}
	return b.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, out any, retry bool) error {
	body, err := c.do(ctx, method, path, retry)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// do sends a body-less request. Only idempotent calls pass retry=true.
func (c *Client) do(ctx context.Context, method, path string, retry bool) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)

	attempts := 1
	if retry {
		attempts = max(c.retryMax, 1)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := &APIError{Status: status}
			if jerr := json.Unmarshal(resp.Body(), &apiErr.Problem); jerr != nil {
				apiErr.Problem.Problem = truncate(string(resp.Body()), 512)
			}
			// 404 join 응답은 null 필드만 담는다
			if apiErr.Problem.Problem == "" && apiErr.Problem.Code == "" && status == fasthttp.StatusNotFound {
				apiErr.Problem.Code = "not_found"
			}
			if attempt == attempts || !shouldRetryStatus(status) {
				return nil, apiErr
			}
			lastErr = apiErr
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		return append([]byte(nil), resp.Body()...), nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
