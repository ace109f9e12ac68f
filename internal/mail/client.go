// Package mail dispatches transactional email through the relay endpoint. The
// relay holds the provider credential server-side; browsers never talk to the
// provider directly.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one outbound email. PDFBase64 carries the rendered attachment.
type Message struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
	PDFBase64   string `json:"pdfBase64,omitempty"`
	PDFFileName string `json:"pdfFileName,omitempty"`
}

// SendResult is the provider-assigned delivery handle.
type SendResult struct {
	MessageID string `json:"messageId"`
}

type relayError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client posts messages to the relay.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a relay client. The API key stays server-side.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send delivers one message through the relay.
func (c *Client) Send(ctx context.Context, msg Message) (*SendResult, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("mail: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mail: relay request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		var relayErr relayError
		if err := json.NewDecoder(resp.Body).Decode(&relayErr); err == nil && relayErr.Error != "" {
			return nil, fmt.Errorf("mail: relay rejected message: %s: %s", relayErr.Error, relayErr.Details)
		}
		return nil, fmt.Errorf("mail: relay returned status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("mail: decode relay response: %w", err)
	}
	return &result, nil
}
