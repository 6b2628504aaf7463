// Package personalize turns a template and a lead into a ready-to-send
// subject and body, through an LLM when one is configured and by token
// substitution otherwise.
package personalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/metrics"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

const DefaultSenderName = "AutoReachPro Team"

const (
	MinVariants = 1
	MaxVariants = 5
)

type Template struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// LeadData is the subset of a lead the personalizer may look at.
type LeadData struct {
	FirstName   string
	LastName    string
	Company     string
	Position    string
	Industry    string
	Website     string
	LinkedInURL string
	Notes       string
}

func FromLead(l *model.Lead) LeadData {
	if l == nil {
		return LeadData{}
	}
	return LeadData{
		FirstName:   l.FirstName,
		LastName:    l.LastName,
		Company:     l.Company,
		Position:    l.Position,
		Industry:    l.Industry,
		Website:     l.Website,
		LinkedInURL: l.LinkedInURL,
		Notes:       l.Notes,
	}
}

type Result struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
	// AI is false when the result came from substitution.
	AI bool `json:"ai_generated"`
}

type Variant struct {
	Result
	Variant int `json:"variant"`
}

// Completer sends a chat conversation to an LLM and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, apiKey string, messages []Message) (string, error)
}

type Personalizer struct {
	LLM Completer
	Log *zap.Logger
}

func New(llm Completer, log *zap.Logger) *Personalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Personalizer{LLM: llm, Log: log}
}

// Personalize never fails: any LLM problem degrades to Substitute.
func (p *Personalizer) Personalize(ctx context.Context, apiKey string, tmpl Template, lead LeadData, senderName string) Result {
	if senderName == "" {
		senderName = DefaultSenderName
	}
	if p.LLM == nil || apiKey == "" {
		return p.fallback(tmpl, lead, senderName)
	}

	reply, err := p.LLM.Complete(ctx, apiKey, buildPrompt(tmpl, lead))
	if err != nil {
		p.Log.Warn("ai personalization failed, using substitution", zap.Error(err))
		return p.fallback(tmpl, lead, senderName)
	}

	res, err := parseReply(reply)
	if err != nil {
		p.Log.Warn("unusable ai reply, using substitution", zap.Error(err))
		return p.fallback(tmpl, lead, senderName)
	}

	metrics.Personalizations.WithLabelValues("ai").Inc()
	return res
}

// Variants makes n independent personalization calls, n clamped to 1..5.
func (p *Personalizer) Variants(ctx context.Context, apiKey string, tmpl Template, lead LeadData, n int) []Variant {
	if n < MinVariants {
		n = MinVariants
	}
	if n > MaxVariants {
		n = MaxVariants
	}

	out := make([]Variant, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, Variant{Result: p.Personalize(ctx, apiKey, tmpl, lead, ""), Variant: i})
	}
	return out
}

func (p *Personalizer) fallback(tmpl Template, lead LeadData, senderName string) Result {
	metrics.Personalizations.WithLabelValues("fallback").Inc()
	return Substitute(tmpl, lead, senderName)
}

var errIncompleteReply = errors.New("reply is missing subject or content")

func parseReply(reply string) (Result, error) {
	reply = stripFences(reply)

	var parsed struct {
		Subject string `json:"subject"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(reply), &parsed); err != nil {
		return Result{}, fmt.Errorf("decode reply: %w", err)
	}
	if strings.TrimSpace(parsed.Subject) == "" || strings.TrimSpace(parsed.Content) == "" {
		return Result{}, errIncompleteReply
	}
	return Result{Subject: parsed.Subject, Content: parsed.Content, AI: true}, nil
}

// stripFences removes a surrounding markdown code block, e.g. ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

const systemPrompt = "You are an expert email personalization assistant. Return only valid JSON with subject and content keys."

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func buildPrompt(tmpl Template, lead LeadData) []Message {
	var b strings.Builder
	b.WriteString("You write personalized B2B outreach emails.\n\n")
	b.WriteString("LEAD:\n")
	fmt.Fprintf(&b, "- Name: %s %s\n", lead.FirstName, lead.LastName)
	fmt.Fprintf(&b, "- Company: %s\n", orDefault(lead.Company, "Unknown"))
	fmt.Fprintf(&b, "- Position: %s\n", orDefault(lead.Position, "Unknown"))
	fmt.Fprintf(&b, "- Industry: %s\n", orDefault(lead.Industry, "Unknown"))
	fmt.Fprintf(&b, "- Website: %s\n", orDefault(lead.Website, "Not provided"))
	fmt.Fprintf(&b, "- LinkedIn: %s\n", orDefault(lead.LinkedInURL, "Not provided"))
	fmt.Fprintf(&b, "- Notes: %s\n\n", orDefault(lead.Notes, "None"))
	b.WriteString("TEMPLATE:\n")
	fmt.Fprintf(&b, "Subject: %s\nContent: %s\n\n", tmpl.Subject, tmpl.Content)
	b.WriteString(`Rewrite the subject and content for this lead. Replace placeholders such as {{first_name}} and {{company}} with real data.
Add one or two specific details about their company or industry. Keep the tone professional and warm, keep the original
structure and call to action, and stay under 150 words. If information is missing, work around it without mentioning it.

Return ONLY a JSON object with "subject" and "content" keys.`)

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}
