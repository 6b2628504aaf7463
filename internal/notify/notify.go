// Package notify posts campaign summaries to a tenant's chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrPrivateAddress is returned for webhooks that point inside the network
// the server runs in.
var ErrPrivateAddress = errors.New("webhook address is not public")

type Notifier interface {
	Notify(ctx context.Context, webhookURL, text string) error
}

type WebhookNotifier struct {
	HTTP *http.Client
}

// NewWebhookNotifier returns a notifier whose dialer refuses loopback,
// private and link-local addresses, checked after DNS resolution.
func NewWebhookNotifier() *WebhookNotifier {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: func(network, address string, _ syscall.RawConn) error {
			host, _, err := net.SplitHostPort(address)
			if err != nil {
				return err
			}
			if ip := net.ParseIP(host); ip == nil || !publicIP(ip) {
				return ErrPrivateAddress
			}
			return nil
		},
	}
	return &WebhookNotifier{HTTP: &http.Client{
		Timeout:   10 * time.Second,
		Transport: &http.Transport{DialContext: dialer.DialContext},
	}}
}

// ValidateWebhookURL accepts https URLs whose host is not a literal
// non-public address or localhost. Hostnames are checked again at dial time.
func ValidateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Hostname() == "" {
		return errors.New("must be an https URL")
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return ErrPrivateAddress
	}
	if ip := net.ParseIP(host); ip != nil && !publicIP(ip) {
		return ErrPrivateAddress
	}
	return nil
}

func publicIP(ip net.IP) bool {
	return !(ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast())
}

// Notify posts {"text": text}. Any non-2xx response is an error.
func (n *WebhookNotifier) Notify(ctx context.Context, webhookURL, text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func CampaignSummary(name string, sent, failed int) string {
	return fmt.Sprintf("🚀 Campaign %q completed!\n✅ Sent: %d\n❌ Failed: %d", name, sent, failed)
}
