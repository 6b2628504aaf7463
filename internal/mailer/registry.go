package mailer

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Credentials are the tenant settings that decide which provider is used.
type Credentials struct {
	ResendAPIKey string
	SMTPURL      string
	From         string
}

func (c Credentials) fingerprint() string {
	sum := sha256.Sum256([]byte(c.ResendAPIKey + "\x00" + c.SMTPURL + "\x00" + c.From))
	return hex.EncodeToString(sum[:])
}

type Options struct {
	ResendBaseURL        string
	DefaultFrom          string
	SimulatedDelay       time.Duration
	SimulatedFailureRate float64
	Log                  *zap.Logger
}

type cached struct {
	fingerprint string
	provider    Provider
}

// Registry keeps one provider per tenant and rebuilds it when the tenant's
// credentials change.
type Registry struct {
	opts Options

	mu        sync.Mutex
	providers map[string]cached
}

func NewRegistry(opts Options) *Registry {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.DefaultFrom == "" {
		opts.DefaultFrom = DefaultFrom
	}
	return &Registry{opts: opts, providers: map[string]cached{}}
}

func (r *Registry) For(tenantID string, creds Credentials) Provider {
	fp := creds.fingerprint()

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.providers[tenantID]; ok && c.fingerprint == fp {
		return c.provider
	}
	p := r.build(tenantID, creds)
	r.providers[tenantID] = cached{fingerprint: fp, provider: p}
	return p
}

func (r *Registry) build(tenantID string, creds Credentials) Provider {
	from := creds.From
	if from == "" {
		from = r.opts.DefaultFrom
	}

	if strings.HasPrefix(creds.ResendAPIKey, ResendKeyPrefix) {
		return NewResendProvider(creds.ResendAPIKey, r.opts.ResendBaseURL, from)
	}
	if creds.SMTPURL != "" {
		sp, err := ParseSMTPURL(creds.SMTPURL, from)
		if err == nil {
			return sp
		}
		r.opts.Log.Warn("invalid smtp url, using simulated provider",
			zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return &SimulatedProvider{Delay: r.opts.SimulatedDelay, FailureRate: r.opts.SimulatedFailureRate}
}
