package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmorandell/innkeeper/common/retry"
)

// HTTPConfig configures the property-management availability client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// HTTPChecker queries a property-management backend over HTTP. Transient
// failures (5xx, network errors) are retried twice with a short backoff
// before the turn is treated as an availability failure.
type HTTPChecker struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTPChecker creates the client. Timeout defaults to 10s.
func NewHTTPChecker(cfg HTTPConfig) *HTTPChecker {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPChecker{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// CheckAvailability implements Checker.
func (c *HTTPChecker) CheckAvailability(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encode availability query: %w", err)
	}

	var result *Result
	cfg := retry.Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		ShouldRetry: func(err error) bool {
			var perm *permanentError
			return !errors.As(err, &perm)
		},
	}
	err = retry.Do(ctx, cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.BaseURL+"/v1/availability/check", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("availability request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("read availability response: %w", err)
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("availability backend status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return &permanentError{fmt.Errorf("availability backend status %d: %s", resp.StatusCode, raw)}
		}

		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			return &permanentError{fmt.Errorf("decode availability response: %w", err)}
		}
		result = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }
