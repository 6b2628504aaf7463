package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/queue"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

// ContactWorker advances the lead lifecycle after a campaign completes: every
// lead that was sent to is marked contacted.
type ContactWorker struct {
	LeadRepo repository.LeadRepositoryInterface
	Log      *zap.Logger
}

func NewContactWorker(repo repository.LeadRepositoryInterface, log *zap.Logger) *ContactWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactWorker{LeadRepo: repo, Log: log}
}

// Handle processes one campaign.completed payload.
func (w *ContactWorker) Handle(payload any) error {
	ev, err := queue.DecodeCampaignCompleted(payload)
	if err != nil {
		// Malformed payloads are dropped, retrying will not help.
		w.Log.Error("invalid campaign completed event", zap.Error(err))
		return nil
	}
	if len(ev.SentLeadIDs) == 0 {
		return nil
	}

	n, err := w.LeadRepo.MarkContacted(context.Background(), ev.UserID, ev.SentLeadIDs, ev.SentAt)
	if err != nil {
		return fmt.Errorf("mark leads contacted for campaign %s: %w", ev.CampaignID, err)
	}
	w.Log.Info("leads marked contacted",
		zap.String("campaign_id", ev.CampaignID),
		zap.Int64("updated", n),
	)
	return nil
}

// Subscribe registers the worker on q.
func (w *ContactWorker) Subscribe(q queue.Queue) error {
	return q.Subscribe(queue.TopicCampaignCompleted, w.Handle)
}
