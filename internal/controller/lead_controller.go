package controller

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/csvimport"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

// LeadService is satisfied by *service.LeadService.
type LeadService interface {
	CreateLead(ctx context.Context, userID string, in service.LeadInput) (*model.Lead, error)
	GetLead(ctx context.Context, userID, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, userID string, q service.LeadQuery) ([]*model.Lead, map[string]int, error)
	UpdateLead(ctx context.Context, userID, id string, p service.LeadPatch) (*model.Lead, error)
	DeleteLead(ctx context.Context, userID, id string) error
	Import(ctx context.Context, userID string, records []service.ImportRecord) (*service.ImportResult, error)
}

type LeadController struct {
	LeadService LeadService
	Log         *zap.Logger
}

func (c *LeadController) ListLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	leads, pagination, err := c.LeadService.ListLeads(r.Context(), userID, service.LeadQuery{
		Status:   q.Get("status"),
		Search:   q.Get("search"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	})
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":       leads,
		"pagination": pagination,
	})
}

func (c *LeadController) CreateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.LeadInput
	if !decodeJSON(w, r, &body) {
		return
	}

	lead, err := c.LeadService.CreateLead(r.Context(), userID, body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, lead)
}

func (c *LeadController) GetLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	lead, err := c.LeadService.GetLead(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (c *LeadController) UpdateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.LeadPatch
	if !decodeJSON(w, r, &body) {
		return
	}

	lead, err := c.LeadService.UpdateLead(r.Context(), userID, chi.URLParam(r, "id"), body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, lead)
}

func (c *LeadController) DeleteLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	if err := c.LeadService.DeleteLead(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportLeads accepts either {"leads": [...]} or a text/csv upload.
func (c *LeadController) ImportLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}

	var records []service.ImportRecord
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/csv" {
		rows, err := csvimport.Parse(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			if errors.Is(err, csvimport.ErrTooManyRows) {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			respondError(w, http.StatusBadRequest, "invalid csv: "+err.Error())
			return
		}
		records = make([]service.ImportRecord, len(rows))
		for i, row := range rows {
			records[i] = row
		}
	} else {
		var body struct {
			Leads []service.ImportRecord `json:"leads"`
		}
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, "invalid body")
			return
		}
		records = body.Leads
	}

	res, err := c.LeadService.Import(r.Context(), userID, records)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}
