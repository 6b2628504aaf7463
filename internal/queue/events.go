package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

const TopicCampaignCompleted = "campaign.completed"

// CampaignCompletedEvent is published once a send run finishes.
type CampaignCompletedEvent struct {
	CampaignID  string    `json:"campaign_id"`
	UserID      string    `json:"user_id"`
	SentLeadIDs []string  `json:"sent_lead_ids"`
	Failed      int       `json:"failed"`
	SentAt      time.Time `json:"sent_at"`
}

// DecodeCampaignCompleted accepts the event as published in process or as
// the raw JSON body of an AMQP delivery.
func DecodeCampaignCompleted(payload any) (CampaignCompletedEvent, error) {
	switch p := payload.(type) {
	case CampaignCompletedEvent:
		return p, nil
	case *CampaignCompletedEvent:
		if p == nil {
			return CampaignCompletedEvent{}, fmt.Errorf("nil campaign completed event")
		}
		return *p, nil
	case []byte:
		var ev CampaignCompletedEvent
		if err := json.Unmarshal(p, &ev); err != nil {
			return ev, fmt.Errorf("decode campaign completed event: %w", err)
		}
		return ev, nil
	case json.RawMessage:
		return DecodeCampaignCompleted([]byte(p))
	default:
		return CampaignCompletedEvent{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}
