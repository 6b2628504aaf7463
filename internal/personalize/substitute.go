package personalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/osteele/liquid"
)

const valueProposition = "our AI-powered outreach automation platform has helped similar companies increase response rates by 300%"

var (
	engine = liquid.NewEngine()

	// leftoverToken matches any {{...}} the bindings did not cover.
	leftoverToken = regexp.MustCompile(`\{\{[^{}]*\}\}`)

	// blockTag matches Liquid tag markup such as {% for %} or {% raw %}.
	// Templates are tenant-authored, so only {{ output }} is evaluated.
	blockTag = regexp.MustCompile(`(?s)\{%.*?%\}`)
)

// Substitute fills the known template variables from the lead. It is
// deterministic: the same input always gives the same output.
func Substitute(tmpl Template, lead LeadData, senderName string) Result {
	if senderName == "" {
		senderName = DefaultSenderName
	}
	b := bindings(lead, senderName)
	return Result{
		Subject: render(tmpl.Subject, b),
		Content: render(tmpl.Content, b),
	}
}

func bindings(lead LeadData, senderName string) map[string]any {
	reason := "I came across your profile and was impressed by your background"
	if lead.Company != "" {
		reason = fmt.Sprintf("I noticed your role as %s at %s", orDefault(lead.Position, "a professional"), lead.Company)
	}
	return map[string]any{
		"first_name":          orDefault(lead.FirstName, "there"),
		"last_name":           lead.LastName,
		"full_name":           strings.TrimSpace(lead.FirstName + " " + lead.LastName),
		"company":             orDefault(lead.Company, "your company"),
		"position":            orDefault(lead.Position, "your role"),
		"industry":            orDefault(lead.Industry, "your industry"),
		"website":             lead.Website,
		"sender_name":         senderName,
		"personalized_reason": reason,
		"value_proposition":   valueProposition,
	}
}

func render(src string, b map[string]any) string {
	if src == "" {
		return ""
	}
	src = stripTags(src)
	out, err := engine.ParseAndRenderString(src, liquid.Bindings(b))
	if err != nil {
		out = replaceLiteral(src, b)
	}
	return leftoverToken.ReplaceAllString(out, "")
}

// stripTags drops tag markup and keeps the text between tags. Removal can
// splice a new tag together, so it repeats until none is left.
func stripTags(src string) string {
	for blockTag.MatchString(src) {
		src = blockTag.ReplaceAllString(src, "")
	}
	return src
}

// replaceLiteral is used when the text is not valid Liquid, e.g. a stray
// "{%" in the body.
func replaceLiteral(src string, b map[string]any) string {
	pairs := make([]string, 0, len(b)*4)
	for k, v := range b {
		s := fmt.Sprint(v)
		pairs = append(pairs, "{{"+k+"}}", s, "{{ "+k+" }}", s)
	}
	return strings.NewReplacer(pairs...).Replace(src)
}
