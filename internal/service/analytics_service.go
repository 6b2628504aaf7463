package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

const recentActivityLimit = 5

type AnalyticsService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	LeadRepo     repository.LeadRepositoryInterface
}

type CampaignPerformance struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Status        model.CampaignStatus `json:"status"`
	EmailsSent    int                  `json:"emails_sent"`
	EmailsOpened  int                  `json:"emails_opened"`
	EmailsReplied int                  `json:"emails_replied"`
	CreatedAt     time.Time            `json:"created_at"`
}

type Activity struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

type Analytics struct {
	TotalCampaigns      int                   `json:"totalCampaigns"`
	TotalLeads          int                   `json:"totalLeads"`
	TotalEmailsSent     int                   `json:"totalEmailsSent"`
	TotalEmailsOpened   int                   `json:"totalEmailsOpened"`
	TotalEmailsReplied  int                   `json:"totalEmailsReplied"`
	OpenRate            float64               `json:"openRate"`
	ReplyRate           float64               `json:"replyRate"`
	CampaignPerformance []CampaignPerformance `json:"campaignPerformance"`
	LeadsByStatus       map[string]int        `json:"leadsByStatus"`
	RecentActivity      []Activity            `json:"recentActivity"`
}

// ComputeRates returns open and reply rates as percentages of sent. Both are
// 0 when nothing was sent.
func ComputeRates(sent, opened, replied int) (openRate, replyRate float64) {
	if sent <= 0 {
		return 0, 0
	}
	return float64(opened) * 100 / float64(sent), float64(replied) * 100 / float64(sent)
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string) (*Analytics, error) {
	var (
		campaignCount int
		leadCount     int
		campaigns     []*model.Campaign
		totals        repository.CampaignAggregates
		byStatus      map[string]int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		campaignCount, err = s.CampaignRepo.Count(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		leadCount, err = s.LeadRepo.Count(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.CampaignRepo.Aggregates(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		campaigns, _, err = s.CampaignRepo.List(gctx, userID, repository.CampaignFilter{})
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.LeadRepo.CountByStatus(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}

	a := &Analytics{
		TotalCampaigns:      campaignCount,
		TotalLeads:          leadCount,
		TotalEmailsSent:     totals.EmailsSent,
		TotalEmailsOpened:   totals.EmailsOpened,
		TotalEmailsReplied:  totals.EmailsReplied,
		CampaignPerformance: make([]CampaignPerformance, 0, len(campaigns)),
		LeadsByStatus:       byStatus,
		RecentActivity:      []Activity{},
	}
	if a.LeadsByStatus == nil {
		a.LeadsByStatus = map[string]int{}
	}

	for _, c := range campaigns {
		a.CampaignPerformance = append(a.CampaignPerformance, CampaignPerformance{
			ID:            c.ID,
			Name:          c.Name,
			Status:        c.Status,
			EmailsSent:    c.EmailsSent,
			EmailsOpened:  c.EmailsOpened,
			EmailsReplied: c.EmailsReplied,
			CreatedAt:     c.CreatedAt,
		})
	}
	a.OpenRate, a.ReplyRate = ComputeRates(a.TotalEmailsSent, a.TotalEmailsOpened, a.TotalEmailsReplied)

	recent := make([]*model.Campaign, len(campaigns))
	copy(recent, campaigns)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UpdatedAt.After(recent[j].UpdatedAt) })
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	for _, c := range recent {
		a.RecentActivity = append(a.RecentActivity, Activity{
			ID:          c.ID,
			Type:        "campaign",
			Description: fmt.Sprintf("Campaign %q %s", c.Name, c.Status),
			Timestamp:   c.UpdatedAt,
		})
	}
	return a, nil
}
