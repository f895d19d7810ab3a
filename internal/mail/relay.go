package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RelayClient sends mail through an HTTP relay service. The relay accepts a
// JSON payload and queues delivery itself, so Send returns as soon as the
// relay acknowledges the request.
type RelayClient struct {
	baseURL string
	apiKey  string
	from    string
	client  *http.Client
}

func NewRelayClient(baseURL, apiKey, from string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type relayMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (c *RelayClient) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(relayMessage{From: c.from, To: to, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned status %d", resp.StatusCode)
	}
	return nil
}

// LogSender writes mail to the log instead of delivering it. It stands in for
// the relay in development and tests.
type LogSender struct {
	Logf func(format string, args ...any)
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	if s.Logf != nil {
		s.Logf("mail to=%s subject=%q body=%q", to, subject, body)
	}
	return nil
}
