// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAlreadySending = errors.New("campaign already sent or in progress")
	ErrDuplicateLead  = errors.New("a lead with this email already exists")
	ErrQuotaExceeded  = errors.New("daily send limit reached")
)

// NotFoundError covers both missing rows and rows owned by another tenant.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func NewCampaignNotFound(id string) error { return NewNotFound("campaign", id) }
func NewLeadNotFound(id string) error     { return NewNotFound("lead", id) }
func NewTemplateNotFound(id string) error { return NewNotFound("template", id) }
func NewProfileNotFound(id string) error  { return NewNotFound("profile", id) }

// ValidationError is reported to the caller as a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
