// internal/model/campaign.go
package model

import "time"

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignSending   CampaignStatus = "sending"
	CampaignSent      CampaignStatus = "sent"
	CampaignFailed    CampaignStatus = "failed"
)

// SendableStatuses are the states a send may start from. A failed campaign
// can be triggered again; recipients already marked sent are skipped.
var SendableStatuses = []CampaignStatus{CampaignDraft, CampaignScheduled, CampaignFailed}

func (s CampaignStatus) Sendable() bool {
	for _, st := range SendableStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Editable reports whether name/content may still change.
func (s CampaignStatus) Editable() bool {
	return s == CampaignDraft || s == CampaignScheduled
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignSending, CampaignSent, CampaignFailed:
		return true
	}
	return false
}

type Campaign struct {
	ID                   string         `db:"id" json:"id"`
	UserID               string         `db:"user_id" json:"user_id"`
	TemplateID           *string        `db:"template_id" json:"template_id,omitempty"`
	Name                 string         `db:"name" json:"name"`
	Subject              string         `db:"subject" json:"subject"`
	Content              string         `db:"content" json:"content"`
	Status               CampaignStatus `db:"status" json:"status"`
	UseAIPersonalization bool           `db:"use_ai_personalization" json:"use_ai_personalization"`
	SendTime             *time.Time     `db:"send_time" json:"send_time,omitempty"`
	Timezone             string         `db:"timezone" json:"timezone"`
	TotalLeads           int            `db:"total_leads" json:"total_leads"`
	EmailsSent           int            `db:"emails_sent" json:"emails_sent"`
	EmailsOpened         int            `db:"emails_opened" json:"emails_opened"`
	EmailsReplied        int            `db:"emails_replied" json:"emails_replied"`
	SentAt               *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt            time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at" json:"updated_at"`
}
