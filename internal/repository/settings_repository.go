package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

type SettingsRepositoryInterface interface {
	// Get returns nil, nil when the tenant has never saved settings.
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	Upsert(ctx context.Context, s *model.UserSettings) error
}

type SettingsRepository struct {
	DB *sql.DB
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	query := `
        SELECT user_id, COALESCE(openai_api_key, ''), COALESCE(resend_api_key, ''), COALESCE(smtp_url, ''),
               COALESCE(from_email, ''), COALESCE(sender_name, ''), COALESCE(email_signature, ''),
               COALESCE(timezone, 'UTC'), daily_email_limit, auto_follow_up, COALESCE(slack_webhook, ''),
               created_at, updated_at
        FROM user_settings WHERE user_id = $1
    `
	var s model.UserSettings
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.OpenAIAPIKey, &s.ResendAPIKey, &s.SMTPURL,
		&s.FromEmail, &s.SenderName, &s.EmailSignature,
		&s.Timezone, &s.DailyEmailLimit, &s.AutoFollowUp, &s.SlackWebhook,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *model.UserSettings) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	query := `
        INSERT INTO user_settings (user_id, openai_api_key, resend_api_key, smtp_url, from_email, sender_name,
                                   email_signature, timezone, daily_email_limit, auto_follow_up, slack_webhook,
                                   created_at, updated_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
                NULLIF($7, ''), $8, $9, $10, NULLIF($11, ''), $12, $13)
        ON CONFLICT (user_id) DO UPDATE SET
            openai_api_key = EXCLUDED.openai_api_key,
            resend_api_key = EXCLUDED.resend_api_key,
            smtp_url = EXCLUDED.smtp_url,
            from_email = EXCLUDED.from_email,
            sender_name = EXCLUDED.sender_name,
            email_signature = EXCLUDED.email_signature,
            timezone = EXCLUDED.timezone,
            daily_email_limit = EXCLUDED.daily_email_limit,
            auto_follow_up = EXCLUDED.auto_follow_up,
            slack_webhook = EXCLUDED.slack_webhook,
            updated_at = EXCLUDED.updated_at
    `
	_, err := r.DB.ExecContext(ctx, query,
		s.UserID, s.OpenAIAPIKey, s.ResendAPIKey, s.SMTPURL, s.FromEmail, s.SenderName,
		s.EmailSignature, s.Timezone, s.DailyEmailLimit, s.AutoFollowUp, s.SlackWebhook,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)
