package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

// LeadFilter narrows a lead listing. Limit <= 0 returns every row.
type LeadFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// LeadRepositoryInterface defines methods used by the services
type LeadRepositoryInterface interface {
	Create(ctx context.Context, l *model.Lead) error
	GetByID(ctx context.Context, userID, id string) (*model.Lead, error)
	// FindByEmail returns nil, nil when the tenant has no lead with that email.
	FindByEmail(ctx context.Context, userID, email string) (*model.Lead, error)
	List(ctx context.Context, userID string, f LeadFilter) ([]*model.Lead, int, error)
	Update(ctx context.Context, l *model.Lead) error
	Delete(ctx context.Context, userID, id string) error
	MarkContacted(ctx context.Context, userID string, ids []string, at time.Time) (int64, error)
	CountByStatus(ctx context.Context, userID string) (map[string]int, error)
	Count(ctx context.Context, userID string) (int, error)
}

type LeadRepository struct {
	DB *sql.DB
}

// leadSelect is the column list scanLead expects, qualified by alias.
func leadSelect(alias string) string {
	return strings.NewReplacer("{a}", alias).Replace(`{a}id, {a}user_id, {a}email, {a}first_name, {a}last_name,
        COALESCE({a}company, ''), COALESCE({a}position, ''), COALESCE({a}industry, ''),
        COALESCE({a}website, ''), COALESCE({a}phone, ''), COALESCE({a}linkedin_url, ''),
        {a}status, {a}tags, COALESCE({a}notes, ''), COALESCE({a}source, ''),
        {a}last_contact_date, {a}created_at, {a}updated_at`)
}

var leadColumns = leadSelect("")

func scanLead(s rowScanner) (*model.Lead, error) {
	var l model.Lead
	err := s.Scan(
		&l.ID, &l.UserID, &l.Email, &l.FirstName, &l.LastName,
		&l.Company, &l.Position, &l.Industry,
		&l.Website, &l.Phone, &l.LinkedInURL,
		&l.Status, pq.Array(&l.Tags), &l.Notes, &l.Source,
		&l.LastContactDate, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Tags = nonNil(l.Tags)
	return &l, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *model.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = model.LeadNew
	}
	l.Tags = nonNil(l.Tags)
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
        INSERT INTO leads (id, user_id, email, first_name, last_name, company, position, industry,
                           website, phone, linkedin_url, status, tags, notes, source, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''),
                NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13, NULLIF($14, ''), NULLIF($15, ''), $16, $17)
    `
	_, err := r.DB.ExecContext(ctx, query,
		l.ID, l.UserID, l.Email, l.FirstName, l.LastName, l.Company, l.Position, l.Industry,
		l.Website, l.Phone, l.LinkedInURL, l.Status, pq.Array(l.Tags), l.Notes, l.Source, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrDuplicateLead
		}
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, userID, id string) (*model.Lead, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, appErrors.NewLeadNotFound(id)
	}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	l, err := scanLead(r.DB.QueryRowContext(ctx, query, key, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewLeadNotFound(id)
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) FindByEmail(ctx context.Context, userID, email string) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 AND lower(email) = lower($2) LIMIT 1`
	l, err := scanLead(r.DB.QueryRowContext(ctx, query, userID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lead by email: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) List(ctx context.Context, userID string, f LeadFilter) ([]*model.Lead, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}

	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(" AND (email ILIKE $%[1]d OR first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR company ILIKE $%[1]d)", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT ` + leadColumns + ` FROM leads` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := []*model.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, total, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, l *model.Lead) error {
	if _, ok := canonicalID(l.ID); !ok {
		return appErrors.NewLeadNotFound(l.ID)
	}
	l.UpdatedAt = time.Now().UTC()
	l.Tags = nonNil(l.Tags)
	query := `
        UPDATE leads
        SET email = $3, first_name = $4, last_name = $5, company = NULLIF($6, ''), position = NULLIF($7, ''),
            industry = NULLIF($8, ''), website = NULLIF($9, ''), phone = NULLIF($10, ''),
            linkedin_url = NULLIF($11, ''), status = $12, tags = $13, notes = NULLIF($14, ''),
            source = NULLIF($15, ''), updated_at = $16
        WHERE id = $1 AND user_id = $2
    `
	res, err := r.DB.ExecContext(ctx, query,
		l.ID, l.UserID, l.Email, l.FirstName, l.LastName, l.Company, l.Position,
		l.Industry, l.Website, l.Phone, l.LinkedInURL, l.Status, pq.Array(l.Tags), l.Notes,
		l.Source, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.ErrDuplicateLead
		}
		return fmt.Errorf("update lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewLeadNotFound(l.ID)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, userID, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return appErrors.NewLeadNotFound(id)
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, key, userID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewLeadNotFound(id)
	}
	return nil
}

// MarkContacted moves new leads to contacted and stamps last_contact_date on
// all of the given leads.
func (r *LeadRepository) MarkContacted(ctx context.Context, userID string, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `
        UPDATE leads
        SET status = CASE WHEN status = 'new' THEN 'contacted' ELSE status END,
            last_contact_date = $3, updated_at = $3
        WHERE user_id = $1 AND id = ANY($2)
    `
	res, err := r.DB.ExecContext(ctx, query, userID, pq.Array(ids), at)
	if err != nil {
		return 0, fmt.Errorf("mark leads contacted: %w", err)
	}
	return res.RowsAffected()
}

func (r *LeadRepository) CountByStatus(ctx context.Context, userID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM leads WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *LeadRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

var _ LeadRepositoryInterface = (*LeadRepository)(nil)
