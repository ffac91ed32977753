package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Error describes a failed call. StatusCode is zero when no response was received.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Gateway performs the JSON calls made against the analysis server and the webhook
type Gateway struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a gateway whose requests time out after timeout. A zero timeout disables it.
func New(timeout time.Duration, logger *zap.Logger) *Gateway {
	return NewWithClient(&http.Client{Timeout: timeout}, logger)
}

// NewWithClient creates a gateway on top of an existing http.Client
func NewWithClient(httpClient *http.Client, logger *zap.Logger) *Gateway {
	return &Gateway{
		httpClient: httpClient,
		logger:     logger,
	}
}

// Get issues an authenticated GET and decodes the JSON body into out.
// The token is sent as the basic auth user with an empty password.
func (g *Gateway) Get(ctx context.Context, url, token string, out any) error {
	g.logger.Debug("calling api", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	req.SetBasicAuth(token, "")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &Error{URL: url, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{URL: url, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}

// Post sends body as JSON without credentials. Any response counts as
// success; its status code is returned for the caller to report.
func (g *Gateway) Post(ctx context.Context, url string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, &Error{URL: url, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, &Error{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	g.logger.Debug("post completed",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", respBody),
	)

	return resp.StatusCode, nil
}
