package mailer

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

const (
	ResendKeyPrefix      = "re_"
	DefaultResendBaseURL = "https://api.resend.com"
)

type ResendProvider struct {
	APIKey  string
	BaseURL string
	From    string
	HTTP    *http.Client
}

func NewResendProvider(apiKey, baseURL, from string) *ResendProvider {
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	return &ResendProvider{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		From:    from,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Send(ctx context.Context, msg Message) Result {
	from := msg.From
	if from == "" {
		from = p.From
	}
	if from == "" {
		from = DefaultFrom
	}

	body, err := json.Marshal(map[string]any{
		"from":    from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	if err != nil {
		return failed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return failed(err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.HTTP.Do(req)
	if err != nil {
		return failed(err)
	}
	defer resp.Body.Close()

	var out struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if out.Message != "" {
			return Result{Error: out.Message}
		}
		return Result{Error: fmt.Sprintf("resend: status %d", resp.StatusCode)}
	}
	return Result{Success: true, MessageID: out.ID}
}
