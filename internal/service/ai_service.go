package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/personalize"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

// AIService previews personalization for a single lead.
type AIService struct {
	LeadRepo      repository.LeadRepositoryInterface
	SettingsRepo  repository.SettingsRepositoryInterface
	Personalizer  Personalizer
	DefaultLLMKey string
}

type PersonalizeRequest struct {
	LeadID     string               `json:"lead_id"`
	Template   personalize.Template `json:"template"`
	Variations int                  `json:"variations"`
}

// Personalize returns a personalize.Result for one variation and a
// []personalize.Variant otherwise.
func (s *AIService) Personalize(ctx context.Context, userID string, req PersonalizeRequest) (any, error) {
	if req.LeadID == "" || (strings.TrimSpace(req.Template.Subject) == "" && strings.TrimSpace(req.Template.Content) == "") {
		return nil, appErrors.NewValidation("", "Lead ID and template are required")
	}

	lead, err := s.LeadRepo.GetByID(ctx, userID, req.LeadID)
	if err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.SettingsRepo, userID)
	if err != nil {
		return nil, err
	}
	apiKey := settings.OpenAIAPIKey
	if apiKey == "" {
		apiKey = s.DefaultLLMKey
	}

	data := personalize.FromLead(lead)
	if req.Variations <= 1 {
		if s.Personalizer == nil {
			return personalize.Substitute(req.Template, data, settings.SenderName), nil
		}
		return s.Personalizer.Personalize(ctx, apiKey, req.Template, data, settings.SenderName), nil
	}
	if s.Personalizer == nil {
		return nil, appErrors.NewValidation("variations", "AI personalization is not configured")
	}
	return s.Personalizer.Variants(ctx, apiKey, req.Template, data, req.Variations), nil
}
