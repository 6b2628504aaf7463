package service

import (
	"context"
	"strings"
	"time"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/notify"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

const (
	defaultTimezone   = "UTC"
	defaultDailyLimit = 50
)

// DefaultSettings is what a tenant that never saved settings gets.
func DefaultSettings(userID string) *model.UserSettings {
	return &model.UserSettings{
		UserID:          userID,
		Timezone:        defaultTimezone,
		DailyEmailLimit: defaultDailyLimit,
	}
}

func loadSettings(ctx context.Context, repo repository.SettingsRepositoryInterface, userID string) (*model.UserSettings, error) {
	st, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return DefaultSettings(userID), nil
	}
	return st, nil
}

type SettingsService struct {
	SettingsRepo repository.SettingsRepositoryInterface
}

// SettingsUpdate leaves nil fields unchanged. An empty string clears a
// credential.
type SettingsUpdate struct {
	OpenAIAPIKey    *string `json:"openai_api_key"`
	ResendAPIKey    *string `json:"resend_api_key"`
	SMTPURL         *string `json:"smtp_url"`
	FromEmail       *string `json:"from_email"`
	SenderName      *string `json:"sender_name"`
	EmailSignature  *string `json:"email_signature"`
	Timezone        *string `json:"timezone"`
	DailyEmailLimit *int    `json:"daily_email_limit"`
	AutoFollowUp    *bool   `json:"auto_follow_up"`
	SlackWebhook    *string `json:"slack_webhook"`
}

const maskPrefix = "****"

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return maskPrefix
	}
	return maskPrefix + secret[len(secret)-4:]
}

// masked returns a copy safe to send to the client.
func masked(s *model.UserSettings) *model.UserSettings {
	out := *s
	out.OpenAIAPIKey = mask(s.OpenAIAPIKey)
	out.ResendAPIKey = mask(s.ResendAPIKey)
	out.SMTPURL = mask(s.SMTPURL)
	return &out
}

func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	st, err := loadSettings(ctx, s.SettingsRepo, userID)
	if err != nil {
		return nil, err
	}
	return masked(st), nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, u SettingsUpdate) (*model.UserSettings, error) {
	st, err := loadSettings(ctx, s.SettingsRepo, userID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	// A masked value echoed back by the client means "keep the current one".
	setSecret := func(dst *string, v *string) {
		if v != nil && !strings.HasPrefix(*v, maskPrefix) {
			*dst = strings.TrimSpace(*v)
		}
	}
	setSecret(&st.OpenAIAPIKey, u.OpenAIAPIKey)
	setSecret(&st.ResendAPIKey, u.ResendAPIKey)
	setSecret(&st.SMTPURL, u.SMTPURL)
	set(&st.FromEmail, u.FromEmail)
	set(&st.SenderName, u.SenderName)
	set(&st.EmailSignature, u.EmailSignature)
	set(&st.Timezone, u.Timezone)
	set(&st.SlackWebhook, u.SlackWebhook)
	if u.DailyEmailLimit != nil {
		st.DailyEmailLimit = *u.DailyEmailLimit
	}
	if u.AutoFollowUp != nil {
		st.AutoFollowUp = *u.AutoFollowUp
	}

	if err := validateSettings(st); err != nil {
		return nil, err
	}
	if err := s.SettingsRepo.Upsert(ctx, st); err != nil {
		return nil, err
	}
	return masked(st), nil
}

func validateSettings(st *model.UserSettings) error {
	if st.Timezone == "" {
		st.Timezone = defaultTimezone
	}
	if _, err := time.LoadLocation(st.Timezone); err != nil {
		return appErrors.NewValidation("timezone", "unknown timezone")
	}
	if st.DailyEmailLimit < 0 {
		return appErrors.NewValidation("daily_email_limit", "must not be negative")
	}
	if st.FromEmail != "" && !validEmail(st.FromEmail) {
		return appErrors.NewValidation("from_email", "invalid email address")
	}
	if st.SlackWebhook != "" {
		if err := notify.ValidateWebhookURL(st.SlackWebhook); err != nil {
			return appErrors.NewValidation("slack_webhook", err.Error())
		}
	}
	return nil
}
