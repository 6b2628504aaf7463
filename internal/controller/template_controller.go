package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

// TemplateService is satisfied by *service.TemplateService.
type TemplateService interface {
	ListTemplates(ctx context.Context, userID string) ([]*model.EmailTemplate, error)
	GetTemplate(ctx context.Context, userID, id string) (*model.EmailTemplate, error)
	CreateTemplate(ctx context.Context, userID string, in service.TemplateInput) (*model.EmailTemplate, error)
	UpdateTemplate(ctx context.Context, userID, id string, in service.TemplateInput) (*model.EmailTemplate, error)
	DeleteTemplate(ctx context.Context, userID, id string) error
}

type TemplateController struct {
	TemplateService TemplateService
	Log             *zap.Logger
}

func (c *TemplateController) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	templates, err := c.TemplateService.ListTemplates(r.Context(), userID)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": templates})
}

func (c *TemplateController) GetTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	t, err := c.TemplateService.GetTemplate(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (c *TemplateController) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.TemplateInput
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := c.TemplateService.CreateTemplate(r.Context(), userID, body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (c *TemplateController) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.TemplateInput
	if !decodeJSON(w, r, &body) {
		return
	}
	t, err := c.TemplateService.UpdateTemplate(r.Context(), userID, chi.URLParam(r, "id"), body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (c *TemplateController) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	if err := c.TemplateService.DeleteTemplate(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
