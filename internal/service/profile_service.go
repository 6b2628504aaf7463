package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

const (
	starterCredits   = 500
	starterSendLimit = 500
)

type ProfileService struct {
	ProfileRepo repository.ProfileRepositoryInterface
	Templates   *TemplateService
	Log         *zap.Logger
}

type SetupResult struct {
	Profile   *model.Profile `json:"profile"`
	Templates int            `json:"templates"`
}

// Setup creates the tenant profile on the starter tier and seeds the default
// templates. A template failure does not undo the profile.
func (s *ProfileService) Setup(ctx context.Context, userID, email, fullName string) (*SetupResult, error) {
	email = strings.TrimSpace(email)
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if email == "" || !validEmail(email) {
		return nil, appErrors.NewValidation("email", "a valid email is required")
	}
	if strings.TrimSpace(fullName) == "" {
		fullName = strings.SplitN(email, "@", 2)[0]
	}

	p := &model.Profile{
		ID:                 userID,
		Email:              email,
		FullName:           strings.TrimSpace(fullName),
		SubscriptionTier:   model.TierStarter,
		SubscriptionStatus: "active",
		CreditsRemaining:   starterCredits,
		MonthlySendLimit:   starterSendLimit,
	}
	if err := s.ProfileRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	res := &SetupResult{Profile: p}
	if s.Templates != nil {
		ts, err := s.Templates.SeedDefaults(ctx, userID)
		if err != nil {
			if s.Log != nil {
				s.Log.Error("failed to seed default templates", zap.String("user_id", userID), zap.Error(err))
			}
		} else {
			res.Templates = len(ts)
		}
	}
	return res, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return s.ProfileRepo.GetByID(ctx, userID)
}
