// Package wpt fetches and decodes WebPageTest results.
package wpt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/huangsam/wpperf/internal/contract"
)

// maxResultBytes bounds the size of a result document.
const maxResultBytes = 64 << 20

// Errors reported for the result envelope.
var (
	ErrTestNotComplete = errors.New("webpagetest test not complete")
	ErrTestFailed      = errors.New("webpagetest test failed")
	ErrResultTooLarge  = errors.New("webpagetest result exceeds size limit")
)

// HTTPResultClient reads results from the jsonResult.php endpoint of a WebPageTest server.
type HTTPResultClient struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	attempts uint
	delay    time.Duration
	maxBytes int64
}

var _ contract.ResultClient = &HTTPResultClient{}

// NewHTTPResultClient creates a client for the server at baseURL. Pending tests and
// server errors are retried up to retries times with a fixed delay.
func NewHTTPResultClient(baseURL, apiKey string, timeout time.Duration, retries int, delay time.Duration) *HTTPResultClient {
	return &HTTPResultClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		attempts: uint(max(retries, 0)) + 1,
		delay:    delay,
		maxBytes: maxResultBytes,
	}
}

// BaseURL returns the server the client talks to.
func (c *HTTPResultClient) BaseURL() string {
	return c.baseURL
}

// GetResult returns the raw JSON document of a completed test.
func (c *HTTPResultClient) GetResult(ctx context.Context, testID string) ([]byte, error) {
	var data []byte
	err := retry.New(
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	).Do(func() error {
		body, err := c.fetch(ctx, testID)
		if err != nil {
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch test %s: %w", testID, err)
	}
	return data, nil
}

func (c *HTTPResultClient) fetch(ctx context.Context, testID string) ([]byte, error) {
	endpoint := c.baseURL + "/jsonResult.php?" + url.Values{"test": {testID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-WPT-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, retry.Unrecoverable(fmt.Errorf("%w: more than %d bytes", ErrResultTooLarge, c.maxBytes))
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, retry.Unrecoverable(fmt.Errorf("server returned HTTP %d", resp.StatusCode))
	}

	var envelope struct {
		StatusCode int    `json:"statusCode"`
		StatusText string `json:"statusText"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("invalid result document: %w", err))
	}

	switch {
	case envelope.StatusCode == http.StatusOK:
		return data, nil
	case envelope.StatusCode >= 100 && envelope.StatusCode < 200:
		return nil, fmt.Errorf("%w: %s", ErrTestNotComplete, envelope.StatusText)
	default:
		return nil, retry.Unrecoverable(fmt.Errorf("%w: status %d: %s", ErrTestFailed, envelope.StatusCode, envelope.StatusText))
	}
}
