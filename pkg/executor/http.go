package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPExecutor replays the payload snapshot against the provisioning
// endpoint with a POST. Any 2xx response is success; everything else,
// including transport errors, is a failure. The response body is read and
// truncated into the error text for the audit trail.
type HTTPExecutor struct {
	endpoint string
	client   *http.Client
}

var _ Executor = (*HTTPExecutor)(nil)

// maxErrorBody bounds how much of a failure response ends up in error text.
const maxErrorBody = 512

func NewHTTPExecutor(endpoint string) *HTTPExecutor {
	return &HTTPExecutor{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build provisioning request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("provisioning request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("provisioning endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}
