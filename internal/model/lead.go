// internal/model/lead.go
package model

import (
	"strings"
	"time"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadReplied   LeadStatus = "replied"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadReplied, LeadQualified, LeadConverted:
		return true
	}
	return false
}

type Lead struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	Email           string     `db:"email" json:"email"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Company         string     `db:"company" json:"company,omitempty"`
	Position        string     `db:"position" json:"position,omitempty"`
	Industry        string     `db:"industry" json:"industry,omitempty"`
	Website         string     `db:"website" json:"website,omitempty"`
	Phone           string     `db:"phone" json:"phone,omitempty"`
	LinkedInURL     string     `db:"linkedin_url" json:"linkedin_url,omitempty"`
	Status          LeadStatus `db:"status" json:"status"`
	Tags            []string   `db:"tags" json:"tags"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
	Source          string     `db:"source" json:"source,omitempty"`
	LastContactDate *time.Time `db:"last_contact_date" json:"last_contact_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}
