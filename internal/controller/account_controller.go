package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/service"
)

type SettingsService interface {
	GetSettings(ctx context.Context, userID string) (*model.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, u service.SettingsUpdate) (*model.UserSettings, error)
}

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, userID string) (*service.Analytics, error)
}

type AIService interface {
	Personalize(ctx context.Context, userID string, req service.PersonalizeRequest) (any, error)
}

type ProfileService interface {
	Setup(ctx context.Context, userID, email, fullName string) (*service.SetupResult, error)
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
}

// AccountController serves the per-tenant endpoints that are not CRUD over a
// collection: settings, analytics, profile and AI previews.
type AccountController struct {
	Settings  SettingsService
	Analytics AnalyticsService
	AI        AIService
	Profiles  ProfileService
	Log       *zap.Logger
}

func (c *AccountController) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	st, err := c.Settings.GetSettings(r.Context(), userID)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (c *AccountController) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.SettingsUpdate
	if !decodeJSON(w, r, &body) {
		return
	}
	st, err := c.Settings.UpdateSettings(r.Context(), userID, body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (c *AccountController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	a, err := c.Analytics.GetAnalytics(r.Context(), userID)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (c *AccountController) Personalize(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body service.PersonalizeRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	out, err := c.AI.Personalize(r.Context(), userID, body)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    out,
	})
}

func (c *AccountController) SetupProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	var body struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	res, err := c.Profiles.Setup(r.Context(), userID, body.Email, body.FullName)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Profile and templates created successfully",
		"data":    res,
	})
}

func (c *AccountController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := tenant(w, r)
	if !ok {
		return
	}
	p, err := c.Profiles.GetProfile(r.Context(), userID)
	if err != nil {
		respondErr(w, c.Log, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
