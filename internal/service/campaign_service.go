// internal/service/campaign_service.go
package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/mailer"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/notify"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/queue"
	"github.com/unclebandit/autoreachpro-backend/internal/quota"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

// Personalizer is satisfied by *personalize.Personalizer.
type Personalizer interface {
	Personalize(ctx context.Context, apiKey string, tmpl personalize.Template, lead personalize.LeadData, senderName string) personalize.Result
	Variants(ctx context.Context, apiKey string, tmpl personalize.Template, lead personalize.LeadData, n int) []personalize.Variant
}

// Mailers hands out the delivery provider for a tenant.
type Mailers interface {
	For(tenantID string, creds mailer.Credentials) mailer.Provider
}

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	TemplateRepo repository.TemplateRepositoryInterface
	SettingsRepo repository.SettingsRepositoryInterface

	Personalizer Personalizer
	Mailers      Mailers
	Quota        quota.Limiter
	Notifier     notify.Notifier
	Queue        queue.Queue
	Log          *zap.Logger

	// DefaultLLMKey is used when the tenant has no key of its own.
	DefaultLLMKey string
	// Pacing is the minimum gap between two dispatches.
	Pacing                 time.Duration
	PersonalizeConcurrency int
	// SendLease bounds how long a "sending" campaign may go without a
	// heartbeat. Zero means DefaultSendLease.
	SendLease time.Duration
}

type CreateCampaignInput struct {
	Name                 string     `json:"name"`
	Subject              string     `json:"subject"`
	Content              string     `json:"content"`
	TemplateID           *string    `json:"template_id,omitempty"`
	SelectedLeads        []string   `json:"selected_leads"`
	UseAIPersonalization bool       `json:"use_ai_personalization"`
	SendTime             *time.Time `json:"send_time,omitempty"`
	Timezone             string     `json:"timezone"`
}

// UpdateCampaignInput leaves nil fields unchanged.
type UpdateCampaignInput struct {
	Name                 *string    `json:"name"`
	Subject              *string    `json:"subject"`
	Content              *string    `json:"content"`
	UseAIPersonalization *bool      `json:"use_ai_personalization"`
	SendTime             *time.Time `json:"send_time"`
	Timezone             *string    `json:"timezone"`
	SelectedLeads        []string   `json:"selected_leads"`
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

func (s *CampaignService) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *CampaignService) CreateCampaign(ctx context.Context, userID string, in CreateCampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{
		UserID:               userID,
		Name:                 strings.TrimSpace(in.Name),
		Subject:              in.Subject,
		Content:              in.Content,
		UseAIPersonalization: in.UseAIPersonalization,
		SendTime:             in.SendTime,
		Timezone:             in.Timezone,
		Status:               model.CampaignDraft,
	}

	if in.TemplateID != nil && *in.TemplateID != "" {
		t, err := s.TemplateRepo.GetByID(ctx, userID, *in.TemplateID)
		if err != nil {
			return nil, err
		}
		c.TemplateID = &t.ID
		if strings.TrimSpace(c.Subject) == "" {
			c.Subject = t.Subject
		}
		if strings.TrimSpace(c.Content) == "" {
			c.Content = t.Content
		}
	}

	if c.Name == "" || strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Content) == "" {
		return nil, appErrors.NewValidation("", "name, subject and content are required")
	}
	if c.SendTime != nil {
		c.Status = model.CampaignScheduled
	}

	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	if c.TemplateID != nil {
		if err := s.TemplateRepo.IncrementUsage(ctx, userID, *c.TemplateID); err != nil {
			s.log().Warn("failed to bump template usage", zap.String("template_id", *c.TemplateID), zap.Error(err))
		}
	}

	if len(in.SelectedLeads) > 0 {
		n, err := s.CampaignRepo.AttachLeads(ctx, userID, c.ID, in.SelectedLeads)
		if err != nil {
			s.log().Error("failed to attach leads", zap.String("campaign_id", c.ID), zap.Error(err))
		} else {
			c.TotalLeads = n
		}
	}

	s.log().Info("campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("status", string(c.Status)),
		zap.Int("total_leads", c.TotalLeads),
	)
	return c, nil
}

func (s *CampaignService) UpdateCampaign(ctx context.Context, userID, id string, in UpdateCampaignInput) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !c.Status.Editable() {
		return nil, appErrors.NewValidation("status", "only draft or scheduled campaigns can be edited")
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Subject != nil {
		c.Subject = *in.Subject
	}
	if in.Content != nil {
		c.Content = *in.Content
	}
	if in.UseAIPersonalization != nil {
		c.UseAIPersonalization = *in.UseAIPersonalization
	}
	if in.Timezone != nil {
		c.Timezone = *in.Timezone
	}
	if in.SendTime != nil {
		c.SendTime = in.SendTime
		c.Status = model.CampaignScheduled
	}
	if c.Name == "" || strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Content) == "" {
		return nil, appErrors.NewValidation("", "name, subject and content are required")
	}

	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	if len(in.SelectedLeads) > 0 {
		if _, err := s.CampaignRepo.AttachLeads(ctx, userID, c.ID, in.SelectedLeads); err != nil {
			s.log().Error("failed to attach leads", zap.String("campaign_id", c.ID), zap.Error(err))
		}
		if fresh, err := s.CampaignRepo.GetByID(ctx, userID, id); err == nil {
			c = fresh
		}
	}
	return c, nil
}

func (s *CampaignService) DeleteCampaign(ctx context.Context, userID, id string) error {
	return s.CampaignRepo.Delete(ctx, userID, id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, userID string, page, pageSize int, status string) ([]*model.Campaign, map[string]int, error) {
	page, pageSize, offset := normalizePage(page, pageSize)

	campaigns, total, err := s.CampaignRepo.List(ctx, userID, repository.CampaignFilter{
		Status: status,
		Limit:  pageSize,
		Offset: offset,
	})
	if err != nil {
		return nil, nil, err
	}
	return campaigns, pagination(page, pageSize, total), nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, userID, id string) (*CampaignDetails, error) {
	c, err := s.CampaignRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.CampaignRepo.RecipientStats(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range stats {
		total += n
	}
	stats["total"] = total

	return &CampaignDetails{Campaign: c, Stats: stats}, nil
}
