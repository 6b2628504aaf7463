// internal/model/settings.go
package model

import "time"

// UserSettings holds per-tenant credentials and sending preferences.
type UserSettings struct {
	UserID          string    `db:"user_id" json:"user_id"`
	OpenAIAPIKey    string    `db:"openai_api_key" json:"openai_api_key,omitempty"`
	ResendAPIKey    string    `db:"resend_api_key" json:"resend_api_key,omitempty"`
	SMTPURL         string    `db:"smtp_url" json:"smtp_url,omitempty"`
	FromEmail       string    `db:"from_email" json:"from_email,omitempty"`
	SenderName      string    `db:"sender_name" json:"sender_name,omitempty"`
	EmailSignature  string    `db:"email_signature" json:"email_signature,omitempty"`
	Timezone        string    `db:"timezone" json:"timezone"`
	DailyEmailLimit int       `db:"daily_email_limit" json:"daily_email_limit"`
	AutoFollowUp    bool      `db:"auto_follow_up" json:"auto_follow_up"`
	SlackWebhook    string    `db:"slack_webhook" json:"slack_webhook,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
