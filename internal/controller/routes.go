package controller

import (
	"github.com/go-chi/chi/v5"

	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

// API groups every tenant-scoped controller. Mount it behind the
// authentication middleware.
type API struct {
	Campaigns *CampaignController
	Leads     *LeadController
	Templates *TemplateController
	Account   *AccountController
}

func (a *API) Mount(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", a.Account.GetProfile)
		r.Post("/setup", a.Account.SetupProfile)
	})

	r.Route("/leads", func(r chi.Router) {
		r.Get("/", a.Leads.ListLeads)
		r.Post("/", a.Leads.CreateLead)
		r.Post("/import", a.Leads.ImportLeads)
		r.Get("/{id}", a.Leads.GetLead)
		r.Put("/{id}", a.Leads.UpdateLead)
		r.Delete("/{id}", a.Leads.DeleteLead)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", a.Templates.ListTemplates)
		r.Post("/", a.Templates.CreateTemplate)
		r.Get("/{id}", a.Templates.GetTemplate)
		r.Put("/{id}", a.Templates.UpdateTemplate)
		r.Delete("/{id}", a.Templates.DeleteTemplate)
	})

	r.Route("/campaigns", func(r chi.Router) {
		r.Get("/", a.Campaigns.ListCampaigns)
		r.Post("/", a.Campaigns.CreateCampaign)
		r.Get("/{id}", a.Campaigns.GetCampaignDetails)
		r.Put("/{id}", a.Campaigns.UpdateCampaign)
		r.Delete("/{id}", a.Campaigns.DeleteCampaign)
		r.Post("/{id}/send", a.Campaigns.SendCampaign)
	})

	r.Post("/ai/personalize", a.Account.Personalize)
	r.Get("/settings", a.Account.GetSettings)
	r.Put("/settings", a.Account.UpdateSettings)
	r.Get("/analytics", a.Account.GetAnalytics)
}

var (
	_ CampaignService  = (*service.CampaignService)(nil)
	_ LeadService      = (*service.LeadService)(nil)
	_ TemplateService  = (*service.TemplateService)(nil)
	_ SettingsService  = (*service.SettingsService)(nil)
	_ AnalyticsService = (*service.AnalyticsService)(nil)
	_ AIService        = (*service.AIService)(nil)
	_ ProfileService   = (*service.ProfileService)(nil)
)
