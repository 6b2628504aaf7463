package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

func TestPagination(t *testing.T) {
	repo := NewMockCampaignRepo()
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		repo.Create(context.Background(), &model.Campaign{ID: id, UserID: tenant, Name: id, Status: model.CampaignDraft})
	}
	repo.Create(context.Background(), &model.Campaign{ID: "c9", UserID: "someone-else", Status: model.CampaignDraft})
	svc := &service.CampaignService{CampaignRepo: repo}

	pageSize := 2
	page1, pagination1, err := svc.ListCampaigns(context.Background(), tenant, 1, pageSize, "")
	require.NoError(t, err)
	page2, _, _ := svc.ListCampaigns(context.Background(), tenant, 2, pageSize, "")
	page3, _, _ := svc.ListCampaigns(context.Background(), tenant, 3, pageSize, "")

	if pagination1["total_count"] != 5 {
		t.Errorf("expected total_count 5, got %d", pagination1["total_count"])
	}
	if pagination1["total_pages"] != 3 {
		t.Errorf("expected total_pages 3, got %d", pagination1["total_pages"])
	}
	if len(page1) != 2 || len(page2) != 2 || len(page3) != 1 {
		t.Fatalf("unexpected page sizes %d, %d, %d", len(page1), len(page2), len(page3))
	}
	if page1[0].ID <= page1[1].ID {
		t.Errorf("expected descending order in page 1")
	}
	if page1[1].ID <= page2[0].ID {
		t.Errorf("expected page 2 to continue after page 1")
	}
}

func TestPagination_Defaults(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: NewMockCampaignRepo()}

	_, p, err := svc.ListCampaigns(context.Background(), tenant, 0, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p["page"])
	assert.Equal(t, 20, p["page_size"])
	assert.Equal(t, 0, p["total_pages"])

	_, p, _ = svc.ListCampaigns(context.Background(), tenant, 1, 1000, "")
	assert.Equal(t, 100, p["page_size"])
}

func TestCreateCampaign_FromTemplate(t *testing.T) {
	templates := NewMockTemplateRepo(&model.EmailTemplate{
		ID: "tpl-1", UserID: tenant, Subject: "Quick question about {{company}}", Content: "Hi {{first_name}}",
	})
	campaigns := NewMockCampaignRepo()
	svc := &service.CampaignService{CampaignRepo: campaigns, TemplateRepo: templates}

	tplID := "tpl-1"
	c, err := svc.CreateCampaign(context.Background(), tenant, service.CreateCampaignInput{
		Name:          "Q3 push",
		TemplateID:    &tplID,
		SelectedLeads: []string{"l1", "l2"},
	})
	require.NoError(t, err)

	assert.Equal(t, model.CampaignDraft, c.Status)
	assert.Equal(t, "Quick question about {{company}}", c.Subject)
	assert.Equal(t, 2, c.TotalLeads)

	tpl, _ := templates.GetByID(context.Background(), tenant, "tpl-1")
	assert.Equal(t, 1, tpl.UsageCount)
}

func TestCreateCampaign_Scheduled(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: NewMockCampaignRepo(), TemplateRepo: NewMockTemplateRepo()}
	at := time.Now().Add(24 * time.Hour)

	c, err := svc.CreateCampaign(context.Background(), tenant, service.CreateCampaignInput{
		Name: "Later", Subject: "s", Content: "c", SendTime: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, model.CampaignScheduled, c.Status)
}

func TestCreateCampaign_RequiresContent(t *testing.T) {
	svc := &service.CampaignService{CampaignRepo: NewMockCampaignRepo(), TemplateRepo: NewMockTemplateRepo()}

	_, err := svc.CreateCampaign(context.Background(), tenant, service.CreateCampaignInput{Name: "Empty"})
	assert.True(t, appErrors.IsValidation(err))
}

func TestUpdateCampaign_SentIsLocked(t *testing.T) {
	repo := NewMockCampaignRepo(&model.Campaign{ID: "camp-1", UserID: tenant, Name: "n", Subject: "s", Content: "c", Status: model.CampaignSent})
	svc := &service.CampaignService{CampaignRepo: repo}

	name := "renamed"
	_, err := svc.UpdateCampaign(context.Background(), tenant, "camp-1", service.UpdateCampaignInput{Name: &name})
	assert.True(t, appErrors.IsValidation(err))
	assert.Equal(t, "n", repo.campaign("camp-1").Name)
}

func TestGetCampaignDetailsWithStats(t *testing.T) {
	repo := NewMockCampaignRepo(&model.Campaign{ID: "camp-1", UserID: tenant, Status: model.CampaignSent})
	leads := testLeads(3)
	repo.addRecipient("camp-1", leads[0], model.RecipientSent)
	repo.addRecipient("camp-1", leads[1], model.RecipientSent)
	repo.addRecipient("camp-1", leads[2], model.RecipientFailed)
	svc := &service.CampaignService{CampaignRepo: repo}

	d, err := svc.GetCampaignDetailsWithStats(context.Background(), tenant, "camp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Stats["sent"])
	assert.Equal(t, 1, d.Stats["failed"])
	assert.Equal(t, 0, d.Stats["pending"])
	assert.Equal(t, 3, d.Stats["total"])

	_, err = svc.GetCampaignDetailsWithStats(context.Background(), "intruder", "camp-1")
	assert.True(t, appErrors.IsNotFound(err))
}
