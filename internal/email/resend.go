package email

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

// ResendDispatcher posts messages to the Resend HTTP API
type ResendDispatcher struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

type ResendOption func(*ResendDispatcher)

// WithHTTPClient replaces the default client, mostly for tests
func WithHTTPClient(c *http.Client) ResendOption {
	return func(d *ResendDispatcher) {
		d.httpClient = c
	}
}

func NewResendDispatcher(apiKey, from, baseURL string, opts ...ResendOption) *ResendDispatcher {
	d := &ResendDispatcher{
		apiKey:     apiKey,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send implements Dispatcher
func (d *ResendDispatcher) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(resendEmail{
		From:    d.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", &DispatchError{Provider: "resend", Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var out resendResponse
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode >= 400 {
		message := out.Message
		if message == "" {
			message = "Failed to send email"
		}
		return "", &DispatchError{Provider: "resend", StatusCode: resp.StatusCode, Message: message}
	}
	return out.ID, nil
}
