// internal/httpx/client.go
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const maxErrorBody = 512

// StatusError возвращается при ответе с кодом, отличным от 2xx.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, url: %s, body: %s", e.StatusCode, e.URL, e.Body)
}

// Client выполняет JSON-запросы к внешним API с таймаутом и ограничением частоты.
type Client struct {
	http    *http.Client
	limiter ratelimit.Limiter
	logger  *zap.Logger
}

// New создаёт клиент. requestsPerMinute <= 0 отключает ограничение частоты.
func New(timeout time.Duration, requestsPerMinute int, logger *zap.Logger) *Client {
	limiter := ratelimit.NewUnlimited()
	if requestsPerMinute > 0 {
		limiter = ratelimit.New(requestsPerMinute, ratelimit.Per(time.Minute))
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger.Named("http"),
	}
}

// GetJSON выполняет GET base?query и декодирует ответ в out.
func (c *Client) GetJSON(ctx context.Context, base string, query url.Values, out interface{}) error {
	target := base
	if len(query) > 0 {
		target = base + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, out)
}

// PostJSON отправляет body как JSON и декодирует ответ в out.
func (c *Client) PostJSON(ctx context.Context, target string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if err := req.Context().Err(); err != nil {
		return err
	}
	c.limiter.Take()

	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("http request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
