// internal/model/campaign_lead.go
package model

import "time"

type RecipientStatus string

const (
	RecipientPending RecipientStatus = "pending"
	RecipientSent    RecipientStatus = "sent"
	RecipientFailed  RecipientStatus = "failed"
	RecipientOpened  RecipientStatus = "opened"
	RecipientReplied RecipientStatus = "replied"
	RecipientBounced RecipientStatus = "bounced"
)

// CampaignLead is the join row between a campaign and one of its leads.
// Lead is only populated when the row is loaded for sending.
type CampaignLead struct {
	ID                  string          `db:"id" json:"id"`
	CampaignID          string          `db:"campaign_id" json:"campaign_id"`
	LeadID              string          `db:"lead_id" json:"lead_id"`
	Status              RecipientStatus `db:"status" json:"status"`
	SentAt              *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	OpenedAt            *time.Time      `db:"opened_at" json:"opened_at,omitempty"`
	RepliedAt           *time.Time      `db:"replied_at" json:"replied_at,omitempty"`
	ErrorMessage        string          `db:"error_message" json:"error_message,omitempty"`
	MessageID           string          `db:"message_id" json:"message_id,omitempty"`
	PersonalizedSubject string          `db:"personalized_subject" json:"personalized_subject,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`

	Lead *Lead `json:"lead,omitempty"`
}
