// internal/service/template_service.go
package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

const defaultCategory = "outreach"

var variablePattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// ExtractVariables lists the distinct {{token}} names in order of first use.
func ExtractVariables(texts ...string) []string {
	seen := map[string]bool{}
	vars := []string{}
	for _, t := range texts {
		for _, m := range variablePattern.FindAllStringSubmatch(t, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				vars = append(vars, m[1])
			}
		}
	}
	return vars
}

type TemplateService struct {
	TemplateRepo repository.TemplateRepositoryInterface
	Log          *zap.Logger
}

type TemplateInput struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	return s.TemplateRepo.List(ctx, userID)
}

func (s *TemplateService) GetTemplate(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	return s.TemplateRepo.GetByID(ctx, userID, id)
}

func (in TemplateInput) validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Content) == "" {
		return appErrors.NewValidation("", "name, subject and content are required")
	}
	return nil
}

func (s *TemplateService) CreateTemplate(ctx context.Context, userID string, in TemplateInput) (*model.EmailTemplate, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = defaultCategory
	}
	t := &model.EmailTemplate{
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Subject:   in.Subject,
		Content:   in.Content,
		Category:  category,
		Variables: ExtractVariables(in.Subject, in.Content),
	}
	if err := s.TemplateRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) UpdateTemplate(ctx context.Context, userID, id string, in TemplateInput) (*model.EmailTemplate, error) {
	t, err := s.TemplateRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		t.Name = strings.TrimSpace(in.Name)
	}
	if in.Subject != "" {
		t.Subject = in.Subject
	}
	if in.Content != "" {
		t.Content = in.Content
	}
	if in.Category != "" {
		t.Category = strings.TrimSpace(in.Category)
	}
	t.Variables = ExtractVariables(t.Subject, t.Content)

	if err := s.TemplateRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) DeleteTemplate(ctx context.Context, userID, id string) error {
	return s.TemplateRepo.Delete(ctx, userID, id)
}

// RenderPreview fills a template for a lead with plain substitution.
func (s *TemplateService) RenderPreview(ctx context.Context, userID, id string, lead *model.Lead, senderName string) (personalize.Result, error) {
	t, err := s.TemplateRepo.GetByID(ctx, userID, id)
	if err != nil {
		return personalize.Result{}, err
	}
	return personalize.Substitute(personalize.Template{Subject: t.Subject, Content: t.Content}, personalize.FromLead(lead), senderName), nil
}

// SeedDefaults creates the starter templates every new tenant gets.
func (s *TemplateService) SeedDefaults(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	ts := DefaultTemplates(userID)
	if err := s.TemplateRepo.CreateMany(ctx, ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func DefaultTemplates(userID string) []*model.EmailTemplate {
	defs := []struct{ name, subject, content, category string }{
		{
			name:    "Cold Outreach - General",
			subject: "Quick question about {{company}}",
			content: `Hi {{first_name}},

I hope this email finds you well. I came across {{company}} and was impressed by your work in the {{industry}} space.

I wanted to reach out because {{personalized_reason}}.

{{value_proposition}}

Would you be open to a brief 15-minute conversation this week to discuss how this could benefit {{company}}?

Best regards,
{{sender_name}}`,
			category: "outreach",
		},
		{
			name:    "Follow-up - No Response",
			subject: "Following up on {{company}}",
			content: `Hi {{first_name}},

I wanted to follow up on my previous email about helping {{company}} with {{value_proposition}}.

I understand you're busy, but I believe this could make a significant impact on your {{industry}} operations.

Would you have 10 minutes this week for a quick call?

Best regards,
{{sender_name}}`,
			category: "follow-up",
		},
		{
			name:    "Meeting Request",
			subject: "Partnership opportunity for {{company}}",
			content: `Hi {{first_name}},

I hope you're doing well! I've been following {{company}}'s progress and I'm impressed by your recent achievements.

I believe there's a great opportunity for us to collaborate. Would you be interested in a brief call to explore how we might work together?

Looking forward to hearing from you.

Best regards,
{{sender_name}}`,
			category: "meeting",
		},
	}

	out := make([]*model.EmailTemplate, len(defs))
	for i, d := range defs {
		out[i] = &model.EmailTemplate{
			UserID:    userID,
			Name:      d.name,
			Subject:   d.subject,
			Content:   d.content,
			Category:  d.category,
			Variables: ExtractVariables(d.subject, d.content),
			IsDefault: true,
		}
	}
	return out
}
