package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

func TestComputeRates(t *testing.T) {
	open, reply := service.ComputeRates(200, 50, 10)
	assert.InDelta(t, 25.0, open, 1e-9)
	assert.InDelta(t, 5.0, reply, 1e-9)

	open, reply = service.ComputeRates(0, 3, 1)
	assert.Zero(t, open)
	assert.Zero(t, reply)
}

func TestGetAnalytics(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	campaigns := NewMockCampaignRepo()
	for i := 1; i <= 6; i++ {
		campaigns.Create(context.Background(), &model.Campaign{
			ID:            fmt.Sprintf("c%d", i),
			UserID:        tenant,
			Name:          fmt.Sprintf("C%d", i),
			Status:        model.CampaignSent,
			EmailsSent:    100,
			EmailsOpened:  20,
			EmailsReplied: 5,
			UpdatedAt:     base.Add(time.Duration(i) * time.Hour),
		})
	}
	leads := NewMockLeadRepo(
		&model.Lead{ID: "l1", UserID: tenant, Status: model.LeadNew},
		&model.Lead{ID: "l2", UserID: tenant, Status: model.LeadContacted},
		&model.Lead{ID: "l3", UserID: tenant, Status: model.LeadContacted},
		&model.Lead{ID: "l4", UserID: "other", Status: model.LeadNew},
	)
	svc := &service.AnalyticsService{CampaignRepo: campaigns, LeadRepo: leads}

	a, err := svc.GetAnalytics(context.Background(), tenant)
	require.NoError(t, err)

	assert.Equal(t, 6, a.TotalCampaigns)
	assert.Equal(t, 3, a.TotalLeads)
	assert.Equal(t, 600, a.TotalEmailsSent)
	assert.InDelta(t, 20.0, a.OpenRate, 1e-9)
	assert.InDelta(t, 5.0, a.ReplyRate, 1e-9)
	assert.Len(t, a.CampaignPerformance, 6)
	assert.Equal(t, map[string]int{"new": 1, "contacted": 2}, a.LeadsByStatus)

	require.Len(t, a.RecentActivity, 5)
	assert.Equal(t, "c6", a.RecentActivity[0].ID)
	assert.Equal(t, "c2", a.RecentActivity[4].ID)
}

func TestGetAnalytics_Empty(t *testing.T) {
	svc := &service.AnalyticsService{CampaignRepo: NewMockCampaignRepo(), LeadRepo: NewMockLeadRepo()}

	a, err := svc.GetAnalytics(context.Background(), tenant)
	require.NoError(t, err)
	assert.Zero(t, a.OpenRate)
	assert.NotNil(t, a.RecentActivity)
	assert.NotNil(t, a.LeadsByStatus)
}
