package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	appErrors "github.com/unclebandit/autoreachpro-backend/internal/errors"
	"github.com/unclebandit/autoreachpro-backend/internal/model"
)

type ProfileRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	Create(ctx context.Context, p *model.Profile) error
}

type ProfileRepository struct {
	DB *sql.DB
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	query := `
        SELECT id, email, COALESCE(full_name, ''), subscription_tier, COALESCE(subscription_status, 'active'),
               credits_remaining, monthly_send_limit, created_at, updated_at
        FROM profiles WHERE id = $1
    `
	var p model.Profile
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.FullName, &p.SubscriptionTier, &p.SubscriptionStatus,
		&p.CreditsRemaining, &p.MonthlySendLimit, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewProfileNotFound(id)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p *model.Profile) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	query := `
        INSERT INTO profiles (id, email, full_name, subscription_tier, subscription_status,
                              credits_remaining, monthly_send_limit, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
    `
	_, err := r.DB.ExecContext(ctx, query,
		p.ID, p.Email, p.FullName, p.SubscriptionTier, p.SubscriptionStatus,
		p.CreditsRemaining, p.MonthlySendLimit, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return appErrors.NewValidation("id", "profile already exists")
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

var _ ProfileRepositoryInterface = (*ProfileRepository)(nil)
