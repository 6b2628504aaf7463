package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
	"github.com/unclebandit/autoreachpro-backend/internal/repository"
)

const defaultImportSource = "CSV Import"

type LeadService struct {
	LeadRepo repository.LeadRepositoryInterface
	Log      *zap.Logger
}

type LeadInput struct {
	Email       string           `json:"email"`
	FirstName   string           `json:"first_name"`
	LastName    string           `json:"last_name"`
	Company     string           `json:"company"`
	Position    string           `json:"position"`
	Industry    string           `json:"industry"`
	Website     string           `json:"website"`
	Phone       string           `json:"phone"`
	LinkedInURL string           `json:"linkedin_url"`
	Status      model.LeadStatus `json:"status"`
	Tags        []string         `json:"tags"`
	Notes       string           `json:"notes"`
	Source      string           `json:"source"`
}

// LeadPatch leaves nil fields unchanged.
type LeadPatch struct {
	Email       *string           `json:"email"`
	FirstName   *string           `json:"first_name"`
	LastName    *string           `json:"last_name"`
	Company     *string           `json:"company"`
	Position    *string           `json:"position"`
	Industry    *string           `json:"industry"`
	Website     *string           `json:"website"`
	Phone       *string           `json:"phone"`
	LinkedInURL *string           `json:"linkedin_url"`
	Status      *model.LeadStatus `json:"status"`
	Tags        []string          `json:"tags"`
	Notes       *string           `json:"notes"`
}

type LeadQuery struct {
	Status   string
	Search   string
	Page     int
	PageSize int
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func (s *LeadService) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *LeadService) CreateLead(ctx context.Context, userID string, in LeadInput) (*model.Lead, error) {
	l := &model.Lead{
		UserID:      userID,
		Email:       strings.TrimSpace(in.Email),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		Company:     strings.TrimSpace(in.Company),
		Position:    strings.TrimSpace(in.Position),
		Industry:    strings.TrimSpace(in.Industry),
		Website:     strings.TrimSpace(in.Website),
		Phone:       strings.TrimSpace(in.Phone),
		LinkedInURL: strings.TrimSpace(in.LinkedInURL),
		Status:      in.Status,
		Tags:        in.Tags,
		Notes:       strings.TrimSpace(in.Notes),
		Source:      strings.TrimSpace(in.Source),
	}
	if l.Status == "" {
		l.Status = model.LeadNew
	}
	if err := validateLead(l); err != nil {
		return nil, err
	}

	if err := s.LeadRepo.Create(ctx, l); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateLead) {
			return nil, appErrors.NewValidation("email", appErrors.ErrDuplicateLead.Error())
		}
		return nil, err
	}
	return l, nil
}

func validateLead(l *model.Lead) error {
	if l.Email == "" || l.FirstName == "" {
		return appErrors.NewValidation("", "email and first_name are required")
	}
	if !validEmail(l.Email) {
		return appErrors.NewValidation("email", "invalid email address")
	}
	if !l.Status.Valid() {
		return appErrors.NewValidation("status", fmt.Sprintf("unknown lead status %q", l.Status))
	}
	return nil
}

func (s *LeadService) GetLead(ctx context.Context, userID, id string) (*model.Lead, error) {
	return s.LeadRepo.GetByID(ctx, userID, id)
}

func (s *LeadService) ListLeads(ctx context.Context, userID string, q LeadQuery) ([]*model.Lead, map[string]int, error) {
	page, pageSize, offset := normalizePage(q.Page, q.PageSize)

	leads, total, err := s.LeadRepo.List(ctx, userID, repository.LeadFilter{
		Status: q.Status,
		Search: strings.TrimSpace(q.Search),
		Limit:  pageSize,
		Offset: offset,
	})
	if err != nil {
		return nil, nil, err
	}
	return leads, pagination(page, pageSize, total), nil
}

func (s *LeadService) UpdateLead(ctx context.Context, userID, id string, p LeadPatch) (*model.Lead, error) {
	l, err := s.LeadRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&l.Email, p.Email)
	set(&l.FirstName, p.FirstName)
	set(&l.LastName, p.LastName)
	set(&l.Company, p.Company)
	set(&l.Position, p.Position)
	set(&l.Industry, p.Industry)
	set(&l.Website, p.Website)
	set(&l.Phone, p.Phone)
	set(&l.LinkedInURL, p.LinkedInURL)
	set(&l.Notes, p.Notes)
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Tags != nil {
		l.Tags = p.Tags
	}

	if err := validateLead(l); err != nil {
		return nil, err
	}
	if err := s.LeadRepo.Update(ctx, l); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateLead) {
			return nil, appErrors.NewValidation("email", appErrors.ErrDuplicateLead.Error())
		}
		return nil, err
	}
	return l, nil
}

func (s *LeadService) DeleteLead(ctx context.Context, userID, id string) error {
	return s.LeadRepo.Delete(ctx, userID, id)
}
