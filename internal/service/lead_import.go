package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

// ImportRecord is one loosely-typed lead from a JSON body or CSV row.
type ImportRecord map[string]any

func (r ImportRecord) str(keys ...string) string {
	for _, k := range keys {
		switch v := r[k].(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			// Phone numbers and zip codes arrive as JSON numbers.
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		default:
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func (r ImportRecord) tags() []string {
	switch v := r["tags"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	case string:
		return splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' || r == '|' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ImportResult struct {
	TotalProcessed int           `json:"total_processed"`
	ImportedCount  int           `json:"imported_count"`
	SkippedCount   int           `json:"skipped_count"`
	ErrorCount     int           `json:"error_count"`
	ImportedLeads  []*model.Lead `json:"imported_leads"`
	Errors         []string      `json:"errors"`
}

// Import inserts each record independently; one bad record never stops the
// batch. Existing emails, and repeats within the batch, are skipped.
func (s *LeadService) Import(ctx context.Context, userID string, records []ImportRecord) (*ImportResult, error) {
	if len(records) == 0 {
		return nil, appErrors.NewValidation("leads", "No leads provided")
	}

	res := &ImportResult{
		TotalProcessed: len(records),
		ImportedLeads:  []*model.Lead{},
		Errors:         []string{},
	}
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		email := rec.str("email")
		firstName := rec.str("first_name")

		if email == "" || firstName == "" {
			res.ErrorCount++
			ref := email
			if ref == "" {
				ref = "unknown"
			}
			res.Errors = append(res.Errors, fmt.Sprintf("Missing required fields for lead: %s", ref))
			continue
		}

		key := strings.ToLower(email)
		if seen[key] {
			res.SkippedCount++
			continue
		}
		seen[key] = true

		existing, err := s.LeadRepo.FindByEmail(ctx, userID, email)
		if err != nil {
			res.ErrorCount++
			res.Errors = append(res.Errors, fmt.Sprintf("Unexpected error for %s", email))
			s.log().Error("import lookup failed", zap.String("email", email), zap.Error(err))
			continue
		}
		if existing != nil {
			res.SkippedCount++
			continue
		}

		source := rec.str("source")
		if source == "" {
			source = defaultImportSource
		}
		l := &model.Lead{
			UserID:      userID,
			Email:       email,
			FirstName:   firstName,
			LastName:    rec.str("last_name"),
			Company:     rec.str("company"),
			Position:    rec.str("position"),
			Industry:    rec.str("industry"),
			Website:     rec.str("website"),
			Phone:       rec.str("phone"),
			LinkedInURL: rec.str("linkedin_url", "linkedin"),
			Status:      model.LeadNew,
			Tags:        rec.tags(),
			Notes:       rec.str("notes"),
			Source:      source,
		}

		if err := s.LeadRepo.Create(ctx, l); err != nil {
			if errors.Is(err, appErrors.ErrDuplicateLead) {
				res.SkippedCount++
				continue
			}
			res.ErrorCount++
			res.Errors = append(res.Errors, fmt.Sprintf("Error importing %s", email))
			s.log().Error("import insert failed", zap.String("email", email), zap.Error(err))
			continue
		}
		res.ImportedCount++
		res.ImportedLeads = append(res.ImportedLeads, l)
	}

	s.log().Info("lead import finished",
		zap.String("user_id", userID),
		zap.Int("imported", res.ImportedCount),
		zap.Int("skipped", res.SkippedCount),
		zap.Int("errors", res.ErrorCount),
	)
	return res, nil
}
