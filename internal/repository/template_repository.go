package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

type TemplateRepositoryInterface interface {
	List(ctx context.Context, userID string) ([]*model.EmailTemplate, error)
	GetByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error)
	Create(ctx context.Context, t *model.EmailTemplate) error
	CreateMany(ctx context.Context, ts []*model.EmailTemplate) error
	Update(ctx context.Context, t *model.EmailTemplate) error
	Delete(ctx context.Context, userID, id string) error
	IncrementUsage(ctx context.Context, userID, id string) error
}

type TemplateRepository struct {
	DB *sql.DB
}

const templateColumns = `id, user_id, name, subject, content, COALESCE(category, 'outreach'),
        variables, is_default, usage_count, created_at, updated_at`

func scanTemplate(s rowScanner) (*model.EmailTemplate, error) {
	var t model.EmailTemplate
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.Content, &t.Category,
		pq.Array(&t.Variables), &t.IsDefault, &t.UsageCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Variables = nonNil(t.Variables)
	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context, userID string) ([]*model.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []*model.EmailTemplate{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) GetByID(ctx context.Context, userID, id string) (*model.EmailTemplate, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, appErrors.NewTemplateNotFound(id)
	}
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1 AND user_id = $2`
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, key, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewTemplateNotFound(id)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

const insertTemplate = `
        INSERT INTO email_templates (id, user_id, name, subject, content, category, variables,
                                     is_default, usage_count, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTemplateRow(ctx context.Context, db execer, t *model.EmailTemplate) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Variables = nonNil(t.Variables)
	_, err := db.ExecContext(ctx, insertTemplate,
		t.ID, t.UserID, t.Name, t.Subject, t.Content, t.Category, pq.Array(t.Variables),
		t.IsDefault, t.UsageCount, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TemplateRepository) Create(ctx context.Context, t *model.EmailTemplate) error {
	if err := insertTemplateRow(ctx, r.DB, t); err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// CreateMany inserts all templates or none.
func (r *TemplateRepository) CreateMany(ctx context.Context, ts []*model.EmailTemplate) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create templates: %w", err)
	}
	defer tx.Rollback()

	for _, t := range ts {
		if err := insertTemplateRow(ctx, tx, t); err != nil {
			return fmt.Errorf("create template %q: %w", t.Name, err)
		}
	}
	return tx.Commit()
}

func (r *TemplateRepository) Update(ctx context.Context, t *model.EmailTemplate) error {
	if _, ok := canonicalID(t.ID); !ok {
		return appErrors.NewTemplateNotFound(t.ID)
	}
	t.UpdatedAt = time.Now().UTC()
	t.Variables = nonNil(t.Variables)
	query := `
        UPDATE email_templates
        SET name = $3, subject = $4, content = $5, category = $6, variables = $7, updated_at = $8
        WHERE id = $1 AND user_id = $2
    `
	res, err := r.DB.ExecContext(ctx, query, t.ID, t.UserID, t.Name, t.Subject, t.Content, t.Category, pq.Array(t.Variables), t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(t.ID)
	}
	return nil
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return appErrors.NewTemplateNotFound(id)
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1 AND user_id = $2`, key, userID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(id)
	}
	return nil
}

func (r *TemplateRepository) IncrementUsage(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE email_templates SET usage_count = usage_count + 1, updated_at = NOW()
        WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("increment template usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewTemplateNotFound(id)
	}
	return nil
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)
