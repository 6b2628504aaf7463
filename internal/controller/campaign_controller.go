// internal/controller/campaign_controller.go
package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

// CampaignService is satisfied by *service.CampaignService.
type CampaignService interface {
	CreateCampaign(ctx context.Context, userID string, in service.CreateCampaignInput) (*model.Campaign, error)
	UpdateCampaign(ctx context.Context, userID, id string, in service.UpdateCampaignInput) (*model.Campaign, error)
	DeleteCampaign(ctx context.Context, userID, id string) error
	ListCampaigns(ctx context.Context, userID string, page, pageSize int, status string) ([]*model.Campaign, map[string]int, error)
	GetCampaignDetailsWithStats(ctx context.Context, userID, id string) (*service.CampaignDetails, error)
	SendCampaign(ctx context.Context, userID, id string) (*service.SendCampaignResult, error)
}

type CampaignController struct {
	CampaignService CampaignService
	Log             *zap.Logger
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.CreateCampaignInput
	if !decodeJSON(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), userID, body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && !model.CampaignStatus(status).Valid() {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), userID, queryInt(r, "page"), queryInt(r, "page_size"), status)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaignDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}

	details, err := c.CampaignService.GetCampaignDetailsWithStats(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, details)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.UpdateCampaignInput
	if !decodeJSON(w, r, &body) {
		return
	}

	campaign, err := c.CampaignService.UpdateCampaign(r.Context(), userID, chi.URLParam(r, "id"), body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	if err := c.CampaignService.DeleteCampaign(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendCampaign runs the whole send synchronously and reports per-lead results.
func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}

	result, err := c.CampaignService.SendCampaign(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": result,
	})
}
