package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DocumentConfig configures the document-delivery collaborator, an external
// service that renders the summary into a document and mails it out.
type DocumentConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DocumentDispatcher posts summaries to the document-delivery service. The
// destination is the recipient address the service mails the rendered
// document to.
type DocumentDispatcher struct {
	cfg    DocumentConfig
	client *http.Client
}

// NewDocumentDispatcher creates the client. Timeout defaults to 15s.
func NewDocumentDispatcher(cfg DocumentConfig) *DocumentDispatcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &DocumentDispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (d *DocumentDispatcher) Channel() string { return "document" }

// Send implements Dispatcher.
func (d *DocumentDispatcher) Send(ctx context.Context, destination, summary string) error {
	payload, err := json.Marshal(map[string]string{
		"recipient": destination,
		"summary":   summary,
	})
	if err != nil {
		return &Error{Channel: d.Channel(), Destination: destination, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.cfg.BaseURL+"/v1/documents/send", bytes.NewReader(payload))
	if err != nil {
		return &Error{Channel: d.Channel(), Destination: destination, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if d.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.cfg.APIKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return &Error{Channel: d.Channel(), Destination: destination, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Channel:     d.Channel(),
			Destination: destination,
			Err:         fmt.Errorf("document service status %d: %s", resp.StatusCode, body),
		}
	}
	return nil
}
