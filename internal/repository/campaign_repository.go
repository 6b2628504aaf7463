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

// CampaignFilter narrows a campaign listing. Limit <= 0 returns every row.
type CampaignFilter struct {
	Status string
	Limit  int
	Offset int
}

// CampaignAggregates sums the counters across a tenant's campaigns.
type CampaignAggregates struct {
	EmailsSent    int `json:"emails_sent"`
	EmailsOpened  int `json:"emails_opened"`
	EmailsReplied int `json:"emails_replied"`
}

// RecipientResult is the outcome of one dispatch, written to its join row.
type RecipientResult struct {
	Status              model.RecipientStatus
	SentAt              *time.Time
	MessageID           string
	ErrorMessage        string
	PersonalizedSubject string
}

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, userID, id string) (*model.Campaign, error)
	List(ctx context.Context, userID string, f CampaignFilter) ([]*model.Campaign, int, error)
	Update(ctx context.Context, c *model.Campaign) error
	Delete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int, error)
	Aggregates(ctx context.Context, userID string) (CampaignAggregates, error)

	// Send lifecycle
	ClaimSend(ctx context.Context, userID, id string, staleBefore time.Time) (bool, error)
	Heartbeat(ctx context.Context, userID, id string) error
	UpdateStatus(ctx context.Context, userID, id string, status model.CampaignStatus) error
	Finish(ctx context.Context, userID, id string, sent int, at time.Time) error

	// Recipients
	AttachLeads(ctx context.Context, userID, campaignID string, leadIDs []string) (int, error)
	ListRecipients(ctx context.Context, campaignID string) ([]*model.CampaignLead, error)
	RecordResult(ctx context.Context, campaignLeadID string, res RecipientResult) error
	RecipientStats(ctx context.Context, campaignID string) (map[string]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

// ====================== Campaign CRUD ======================

const campaignColumns = `id, user_id, template_id, name, subject, content, status,
        use_ai_personalization, send_time, COALESCE(timezone, 'UTC'), total_leads,
        emails_sent, emails_opened, emails_replied, sent_at, created_at, updated_at`

func scanCampaign(s rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var templateID sql.NullString
	err := s.Scan(
		&c.ID, &c.UserID, &templateID, &c.Name, &c.Subject, &c.Content, &c.Status,
		&c.UseAIPersonalization, &c.SendTime, &c.Timezone, &c.TotalLeads,
		&c.EmailsSent, &c.EmailsOpened, &c.EmailsReplied, &c.SentAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if templateID.Valid {
		c.TemplateID = &templateID.String
	}
	return &c, nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignDraft
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
        INSERT INTO campaigns (id, user_id, template_id, name, subject, content, status,
                               use_ai_personalization, send_time, timezone, total_leads, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.TemplateID, c.Name, c.Subject, c.Content, c.Status,
		c.UseAIPersonalization, c.SendTime, c.Timezone, c.TotalLeads, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, userID, id string) (*model.Campaign, error) {
	key, ok := canonicalID(id)
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1 AND user_id = $2`
	c, err := scanCampaign(r.DB.QueryRowContext(ctx, query, key, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *CampaignRepository) List(ctx context.Context, userID string, f CampaignFilter) ([]*model.Campaign, int, error) {
	where := ` WHERE user_id = $1`
	args := []any{userID}
	if f.Status != "" {
		args = append(args, f.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns` + where + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, total, rows.Err()
}

// Update only touches campaigns that have not started sending.
func (r *CampaignRepository) Update(ctx context.Context, c *model.Campaign) error {
	if _, ok := canonicalID(c.ID); !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	c.UpdatedAt = time.Now().UTC()
	query := `
        UPDATE campaigns
        SET name = $3, subject = $4, content = $5, use_ai_personalization = $6,
            send_time = $7, timezone = $8, status = $9, updated_at = $10
        WHERE id = $1 AND user_id = $2 AND status IN ('draft', 'scheduled')
    `
	res, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.Subject, c.Content, c.UseAIPersonalization,
		c.SendTime, c.Timezone, c.Status, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appErrors.NewValidation("status", "only draft or scheduled campaigns can be edited")
	}
	return nil
}

// Delete removes the campaign and its join rows in one transaction.
func (r *CampaignRepository) Delete(ctx context.Context, userID, id string) error {
	key, ok := canonicalID(id)
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete campaign: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        DELETE FROM campaigns
        WHERE id = $1 AND user_id = $2 AND status IN ('draft', 'scheduled', 'failed')`, key, userID)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM campaigns WHERE id = $1 AND user_id = $2`, key, userID).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewCampaignNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("delete campaign: %w", err)
		}
		return appErrors.NewValidation("status", "campaigns that are sending or sent cannot be deleted")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_leads WHERE campaign_id = $1`, key); err != nil {
		return fmt.Errorf("delete campaign leads: %w", err)
	}
	return tx.Commit()
}

func (r *CampaignRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count campaigns: %w", err)
	}
	return n, nil
}

func (r *CampaignRepository) Aggregates(ctx context.Context, userID string) (CampaignAggregates, error) {
	var a CampaignAggregates
	query := `
        SELECT COALESCE(SUM(emails_sent), 0), COALESCE(SUM(emails_opened), 0), COALESCE(SUM(emails_replied), 0)
        FROM campaigns WHERE user_id = $1
    `
	if err := r.DB.QueryRowContext(ctx, query, userID).Scan(&a.EmailsSent, &a.EmailsOpened, &a.EmailsReplied); err != nil {
		return a, fmt.Errorf("campaign aggregates: %w", err)
	}
	return a, nil
}

// ====================== Send lifecycle ======================

// ClaimSend moves the campaign into "sending" when its status is one of
// model.SendableStatuses, or when it is already "sending" but has not been
// touched since staleBefore (the process running it died). It reports whether
// this caller holds the send.
func (r *CampaignRepository) ClaimSend(ctx context.Context, userID, id string, staleBefore time.Time) (bool, error) {
	states := make([]string, len(model.SendableStatuses))
	for i, s := range model.SendableStatuses {
		states[i] = string(s)
	}
	query := `
        UPDATE campaigns SET status = 'sending', updated_at = $3
        WHERE id = $1 AND user_id = $2
          AND (status = ANY($4::text[]) OR (status = 'sending' AND updated_at < $5))
    `
	res, err := r.DB.ExecContext(ctx, query, id, userID, time.Now().UTC(), pq.Array(states), staleBefore.UTC())
	if err != nil {
		return false, fmt.Errorf("claim campaign send: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Heartbeat refreshes updated_at on a campaign that is still sending, which
// keeps ClaimSend from treating it as abandoned.
func (r *CampaignRepository) Heartbeat(ctx context.Context, userID, id string) error {
	query := `UPDATE campaigns SET updated_at = $3 WHERE id = $1 AND user_id = $2 AND status = 'sending'`
	if _, err := r.DB.ExecContext(ctx, query, id, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("campaign heartbeat: %w", err)
	}
	return nil
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, userID, id string, status model.CampaignStatus) error {
	query := `UPDATE campaigns SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4`
	_, err := r.DB.ExecContext(ctx, query, status, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	return nil
}

func (r *CampaignRepository) Finish(ctx context.Context, userID, id string, sent int, at time.Time) error {
	query := `
        UPDATE campaigns
        SET status = 'sent', emails_sent = emails_sent + $3, sent_at = $4, updated_at = $4
        WHERE id = $1 AND user_id = $2
    `
	if _, err := r.DB.ExecContext(ctx, query, id, userID, sent, at); err != nil {
		return fmt.Errorf("finish campaign: %w", err)
	}
	return nil
}

// ====================== Recipients ======================

// AttachLeads links the tenant's leads to the campaign as pending recipients.
// Ids that are malformed, belong to another tenant or are already attached
// are ignored.
func (r *CampaignRepository) AttachLeads(ctx context.Context, userID, campaignID string, leadIDs []string) (int, error) {
	leadIDs = canonicalIDs(leadIDs)
	if len(leadIDs) == 0 {
		return 0, nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin attach leads: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
        INSERT INTO campaign_leads (id, campaign_id, lead_id, status, created_at, updated_at)
        SELECT gen_random_uuid(), $1, l.id, 'pending', $3, $3
        FROM leads l
        WHERE l.user_id = $2 AND l.id = ANY($4)
        ON CONFLICT (campaign_id, lead_id) DO NOTHING`,
		campaignID, userID, now, pq.Array(leadIDs))
	if err != nil {
		return 0, fmt.Errorf("attach leads: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE campaigns
        SET total_leads = (SELECT COUNT(*) FROM campaign_leads WHERE campaign_id = $1), updated_at = $3
        WHERE id = $1 AND user_id = $2`, campaignID, userID, now); err != nil {
		return 0, fmt.Errorf("update total leads: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *CampaignRepository) ListRecipients(ctx context.Context, campaignID string) ([]*model.CampaignLead, error) {
	query := `
        SELECT cl.id, cl.campaign_id, cl.lead_id, cl.status, cl.sent_at,
               COALESCE(cl.error_message, ''), COALESCE(cl.message_id, ''), COALESCE(cl.personalized_subject, ''),
               cl.created_at, cl.updated_at,
               ` + leadSelect("l.") + `
        FROM campaign_leads cl
        JOIN leads l ON l.id = cl.lead_id
        WHERE cl.campaign_id = $1
        ORDER BY cl.created_at, cl.id
    `
	rows, err := r.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []*model.CampaignLead{}
	for rows.Next() {
		var cl model.CampaignLead
		var l model.Lead
		err := rows.Scan(
			&cl.ID, &cl.CampaignID, &cl.LeadID, &cl.Status, &cl.SentAt,
			&cl.ErrorMessage, &cl.MessageID, &cl.PersonalizedSubject,
			&cl.CreatedAt, &cl.UpdatedAt,
			&l.ID, &l.UserID, &l.Email, &l.FirstName, &l.LastName,
			&l.Company, &l.Position, &l.Industry,
			&l.Website, &l.Phone, &l.LinkedInURL,
			&l.Status, pq.Array(&l.Tags), &l.Notes, &l.Source,
			&l.LastContactDate, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		l.Tags = nonNil(l.Tags)
		cl.Lead = &l
		recipients = append(recipients, &cl)
	}
	return recipients, rows.Err()
}

func (r *CampaignRepository) RecordResult(ctx context.Context, campaignLeadID string, res RecipientResult) error {
	query := `
        UPDATE campaign_leads
        SET status = $2, sent_at = $3, message_id = NULLIF($4, ''), error_message = NULLIF($5, ''),
            personalized_subject = NULLIF($6, ''), updated_at = NOW()
        WHERE id = $1
    `
	_, err := r.DB.ExecContext(ctx, query, campaignLeadID, res.Status, res.SentAt, res.MessageID, res.ErrorMessage, res.PersonalizedSubject)
	if err != nil {
		return fmt.Errorf("record recipient result: %w", err)
	}
	return nil
}

func (r *CampaignRepository) RecipientStats(ctx context.Context, campaignID string) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM campaign_leads WHERE campaign_id = $1 GROUP BY status`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("recipient stats: %w", err)
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
