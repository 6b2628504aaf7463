// Package mailer delivers one rendered email through a tenant's provider.
package mailer

import (
	"context"
	"html"
	"strings"
)

const DefaultFrom = "AutoReachPro <noreply@autoreachpro.com>"

type Message struct {
	To      string
	Subject string
	HTML    string
	From    string
}

// Result is a delivery outcome. Providers report failures here instead of
// returning an error so the caller can record them per recipient.
type Result struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Provider makes a single delivery attempt.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) Result
}

var paragraphs = strings.NewReplacer("\n\n", "</p><p>", "\n", "<br>")

// HTMLBody converts plain text to the HTML we send. The text is escaped
// first so template content cannot inject markup.
func HTMLBody(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return "<p>" + paragraphs.Replace(html.EscapeString(text)) + "</p>"
}
