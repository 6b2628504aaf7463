// internal/model/profile.go
package model

import "time"

type SubscriptionTier string

const (
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

// Profile is the tenant record. Every other row is scoped by its ID.
type Profile struct {
	ID                 string           `db:"id" json:"id"`
	Email              string           `db:"email" json:"email"`
	FullName           string           `db:"full_name" json:"full_name"`
	SubscriptionTier   SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`
	SubscriptionStatus string           `db:"subscription_status" json:"subscription_status"`
	CreditsRemaining   int              `db:"credits_remaining" json:"credits_remaining"`
	MonthlySendLimit   int              `db:"monthly_send_limit" json:"monthly_send_limit"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}
